package expect_test

import (
	"time"

	"github.com/mhersh/expect"
)

func ExampleSpawn() {
	_ = func() error {
		session, err := expect.Spawn("./my-cli",
			expect.WithArgs("--interactive"),
			expect.WithTimeout(10*time.Second),
		)
		if err != nil {
			return err
		}
		defer session.Close()

		session.Expect(expect.Text("Name:"), 0)
		session.SendKeys("Alice")
		session.Expect(expect.Text("Saved"), 0)

		_, err = session.ExitCode(0)
		return err
	}
}

func ExampleSession_ExpectBranch() {
	_ = func(session *expect.Session) {
		session.ExpectBranch(0,
			expect.Branch{Key: "Overwrite?", Handler: func() {
				session.SendKeys("y")
			}},
			expect.Branch{Key: "Saved", Handler: func() {
				// Nothing to confirm.
			}},
		)
	}
}
