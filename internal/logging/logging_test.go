package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestLevels(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	tests := []struct {
		name    string
		logger  Logger
		want    []string
		notWant []string
	}{
		{"Quiet", Logger{}, []string{"[warn] always", "[error] failed"}, []string{"[info]", "[debug]", "[warn] verbose"}},
		{"Verbose", Logger{Verbose: true}, []string{"[info] starting", "[warn] verbose"}, []string{"[debug]"}},
		{"Debug", Logger{Debug: true}, []string{"[info] starting", "[debug] planned 3"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := tt.logger
			l.Out = &buf

			l.Infof("starting")
			l.Debugf("planned %d", 3)
			l.Warnf("verbose")
			l.WarnfAlways("always")
			l.Errorf("failed")

			got := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Expected %q in %q", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("Did not expect %q in %q", w, got)
				}
			}
		})
	}
}
