package transcript

import (
	"bufio"
	"fmt"
	"io"
)

const maxLineBytes = 1024 * 1024

// EachLine calls fn for every line of r in order, without the line terminator.
// End of input stops the loop; read errors and fn errors are returned.
func EachLine(r io.Reader, fn func(line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	return nil
}
