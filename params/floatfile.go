package params

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadFloatFile reads whitespace separated numbers from a text file.
// A '#' starts a comment that runs to the end of the line.
func ReadFloatFile(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file %s: %w", path, err)
	}
	defer f.Close()

	var values []float32
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, tok := range strings.Fields(text) {
			v, err := strconv.ParseFloat(tok, 32)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: unexpected text %q: %w", path, line, tok, err)
			}
			values = append(values, float32(v))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}
