package api

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/okian/dreamteam/internal/domain/model"
)

// writeEvent writes e as one server-sent event block:
//
//	event: <kind>
//	data: <payload>
//
// A payload spanning several lines is sent as several data lines.
func writeEvent(w io.Writer, e model.Event) error {
	data, err := e.Data()
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "event: %s\n", e.Kind)
	for _, line := range strings.Split(string(data), "\n") {
		fmt.Fprintf(bw, "data: %s\n", strings.TrimSuffix(line, "\r"))
	}
	bw.WriteString("\n")
	return bw.Flush()
}
