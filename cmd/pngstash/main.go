package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"pngstash/internal/pngstash/chunk"
	"pngstash/internal/pngstash/png"
	"pngstash/pkg/pngstash"
)

var (
	// Styles
	typeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func main() {
	// Parse command line arguments
	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	// Handle commands
	cmd := args[0]
	switch cmd {
	case "encode":
		if len(args) < 4 {
			fail(errors.New("usage: pngstash encode <input.png> <type> <message> [output.png]"))
		}
		out := ""
		if len(args) > 4 {
			out = args[4]
		}
		handleEncode(args[1], out, args[2], args[3])

	case "decode":
		if len(args) < 3 {
			fail(errors.New("usage: pngstash decode <file.png> <type>"))
		}
		handleDecode(args[1], args[2])

	case "remove":
		if len(args) < 3 {
			fail(errors.New("usage: pngstash remove <file.png> <type>"))
		}
		handleRemove(args[1], args[2])

	case "print":
		if len(args) < 2 {
			fail(errors.New("usage: pngstash print <file.png>"))
		}
		handlePrint(args[1])

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Usage: pngstash <command> [args...]")
	fmt.Println("\nCommands:")
	fmt.Println("  encode <in> <type> <message> [out]   Hide a message in a PNG file")
	fmt.Println("  decode <file> <type>                 Recover a hidden message")
	fmt.Println("  remove <file> <type>                 Remove a hidden chunk")
	fmt.Println("  print <file>                         List every chunk in a PNG file")
}

func handleEncode(in, out, typeStr, message string) {
	if err := pngstash.EncodeFile(in, out, typeStr, message); err != nil {
		fail(err)
	}
	fmt.Println("Chunk written successfully.")
}

func handleDecode(path, typeStr string) {
	message, err := pngstash.DecodeFile(path, typeStr)
	if err != nil {
		fail(err)
	}
	fmt.Println(message)
}

func handleRemove(path, typeStr string) {
	if err := pngstash.RemoveFile(path, typeStr); err != nil {
		fail(err)
	}
	fmt.Printf("Removed chunk: %s\n", typeStr)
}

func handlePrint(path string) {
	summaries, err := pngstash.InspectFile(path)
	if err != nil {
		fail(err)
	}

	for i, s := range summaries {
		fmt.Printf("%2d  %s  %6d bytes  crc %08x", i, typeStyle.Render(s.Type), s.Length, s.Crc)
		if s.Binary {
			fmt.Printf("  %s", dimStyle.Render("<binary data>"))
		} else if s.Text != "" {
			fmt.Printf("  %q", s.Text)
		}
		fmt.Println()
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
	os.Exit(exitCode(err))
}

// exitCode gives each failure kind its own nonzero exit status so
// scripts can tell a missing chunk from a corrupt file.
func exitCode(err error) int {
	switch {
	case errors.Is(err, png.ErrInvalidSignature):
		return 3
	case errors.Is(err, chunk.ErrTruncated):
		return 4
	case errors.Is(err, chunk.ErrChecksumMismatch):
		return 5
	case errors.Is(err, chunk.ErrInvalidChunkType):
		return 6
	case errors.Is(err, png.ErrTrailingBytes):
		return 7
	case errors.Is(err, png.ErrChunkNotFound):
		return 8
	case errors.Is(err, chunk.ErrNotUTF8):
		return 9
	}
	return 1
}
