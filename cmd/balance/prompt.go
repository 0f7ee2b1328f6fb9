package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

func confirmAction(prompt string) bool {
	return confirm(os.Stdin, os.Stdout, prompt)
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	response, _ := reader.ReadString('\n') // EOF is treated as "no"
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
