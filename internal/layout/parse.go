package layout

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseLayoutFile parses a text layout file: one entry per line of the
// form "start:end name", numbers in hex with an optional "0x" prefix,
// blank lines ignored, read line-at-a-time with bufio.Scanner.
func ParseLayoutFile(r io.Reader) (*Layout, error) {
	l := &Layout{}
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		region, err := parseLayoutLine(line)
		if err != nil {
			return nil, fmt.Errorf("layout: line %d: %w", lineNo, err)
		}
		if err := l.Add(region); err != nil {
			return nil, fmt.Errorf("layout: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("layout: reading layout file: %w", err)
	}
	return l, nil
}

func parseLayoutLine(line string) (LayoutRegion, error) {
	rangePart, name, ok := strings.Cut(line, " ")
	if !ok {
		rangePart, name, ok = strings.Cut(line, "\t")
	}
	if !ok {
		return LayoutRegion{}, fmt.Errorf("malformed entry %q, want \"start:end name\"", line)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return LayoutRegion{}, fmt.Errorf("malformed entry %q: empty name", line)
	}

	startStr, endStr, ok := strings.Cut(rangePart, ":")
	if !ok {
		return LayoutRegion{}, fmt.Errorf("malformed range %q, want \"start:end\"", rangePart)
	}

	start, err := parseHex(startStr)
	if err != nil {
		return LayoutRegion{}, fmt.Errorf("start offset %q: %w", startStr, err)
	}
	end, err := parseHex(endStr)
	if err != nil {
		return LayoutRegion{}, fmt.Errorf("end offset %q: %w", endStr, err)
	}

	return LayoutRegion{Start: start, End: end, Name: name}, nil
}

func parseHex(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(s, 16, 64)
}

// ParseIncludeArg parses a single --image argument: "name" or "name:file".
func ParseIncludeArg(s string) (IncludeArg, error) {
	if s == "" {
		return IncludeArg{}, fmt.Errorf("layout: empty include argument")
	}
	name, file, ok := strings.Cut(s, ":")
	if !ok {
		return IncludeArg{Name: name}, nil
	}
	return IncludeArg{Name: name, File: file}, nil
}
