// Command testbin is a minimal interactive fixture program for testing
// the expect library. Its terminal is in raw mode, so it reads stdin byte
// by byte and treats both CR and LF as line terminators.
//
// Behavior:
//   - With "greet" as the first argument, prints "hello" and exits 0
//   - On startup, prints a "ready> " prompt
//   - "quit": exits with status 0
//   - "fail": exits with status 1
//   - "color": prints an ANSI-colored line
//   - "nums": prints "0 1 2 3"
//   - "menu": prints a numbered menu and a "choose> " prompt, then echoes
//     the selection as "picked: <line>"
//   - "password": prints "Password: ", reads a line, prints "accepted"
//   - "size": prints the current terminal size
//   - "keys": names each received key ("<up>", "<bs>", ...) until "q"
//   - "hang": produces no further output and never exits
//   - Anything else: prints "echo: <line>" and a new "ready> " prompt
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "greet" {
		fmt.Println("hello")
		return
	}

	in := bufio.NewReader(os.Stdin)
	fmt.Print("ready> ")

	for {
		line, err := readLine(in)
		if err != nil {
			return
		}

		switch line {
		case "quit":
			os.Exit(0)

		case "fail":
			os.Exit(1)

		case "color":
			fmt.Print("\x1b[36mblue\x1b[0m thing\n")

		case "nums":
			fmt.Print("0 1 2 3\n")

		case "menu":
			fmt.Print("1) apples\n2) bananas\n3) cherries\nchoose> ")
			choice, err := readLine(in)
			if err != nil {
				return
			}
			fmt.Printf("picked: %s\n", choice)

		case "password":
			fmt.Print("Password: ")
			secret, err := readLine(in)
			if err != nil {
				return
			}
			fmt.Printf("accepted %d\n", len(secret))

		case "size":
			ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
			if err != nil {
				fmt.Printf("size error: %v\n", err)
			} else {
				fmt.Printf("size: %dx%d\n", ws.Col, ws.Row)
			}

		case "keys":
			if err := keyMode(in); err != nil {
				return
			}

		case "hang":
			select {}

		default:
			fmt.Printf("echo: %s\n", line)
		}

		fmt.Print("ready> ")
	}
}

// readLine reads bytes until CR or LF. The terminal is raw, so there is
// no canonical line editing to rely on.
func readLine(in *bufio.Reader) (string, error) {
	var line []byte
	for {
		c, err := in.ReadByte()
		if err != nil {
			if err == io.EOF && len(line) > 0 {
				return string(line), nil
			}
			return "", err
		}
		if c == '\r' || c == '\n' {
			return string(line), nil
		}
		line = append(line, c)
	}
}

// keyMode names each received key sequence until a "q" arrives.
func keyMode(in *bufio.Reader) error {
	for {
		c, err := in.ReadByte()
		if err != nil {
			return err
		}

		switch c {
		case 'q':
			fmt.Print("\n")
			return nil

		case 0x1b:
			// Cursor keys arrive as ESC [ <letter>.
			b1, err := in.ReadByte()
			if err != nil {
				return err
			}
			if b1 != '[' {
				fmt.Print("<esc>")
				continue
			}
			b2, err := in.ReadByte()
			if err != nil {
				return err
			}
			switch b2 {
			case 'A':
				fmt.Print("<up>")
			case 'B':
				fmt.Print("<down>")
			case 'C':
				fmt.Print("<right>")
			case 'D':
				fmt.Print("<left>")
			default:
				fmt.Printf("<csi-%c>", b2)
			}

		case '\b', 0x7f:
			fmt.Print("<bs>")

		case ' ':
			fmt.Print("<sp>")

		case '\r', '\n':
			fmt.Print("<cr>")

		default:
			fmt.Printf("%c", c)
		}
	}
}
