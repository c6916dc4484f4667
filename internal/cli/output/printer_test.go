package output

import (
	"bytes"
	"strings"
	"testing"
)

func newTestPrinter(quiet bool) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := NewPrinter(PrinterOptions{Out: &out, Err: &errOut, ColorMode: ColorNever, Quiet: quiet})
	return p, &out, &errOut
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ColorMode
		wantErr bool
	}{
		{"auto", ColorAuto, false},
		{"always", ColorAlways, false},
		{"never", ColorNever, false},
		{"sometimes", ColorAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColorMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColorMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColorMode(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveColors(t *testing.T) {
	t.Run("always wins over NO_COLOR", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		if !ResolveColors(ColorAlways, false) {
			t.Error("expected colors with ColorAlways")
		}
	})

	t.Run("never wins over config", func(t *testing.T) {
		if ResolveColors(ColorNever, true) {
			t.Error("expected no colors with ColorNever")
		}
	})

	t.Run("NO_COLOR disables auto", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		if ResolveColors(ColorAuto, true) {
			t.Error("expected no colors when NO_COLOR is set")
		}
	})

	t.Run("dumb terminal disables auto", func(t *testing.T) {
		t.Setenv("TERM", "dumb")
		if ResolveColors(ColorAuto, true) {
			t.Error("expected no colors for TERM=dumb")
		}
	})
}

func TestPrinter_PlainOutput(t *testing.T) {
	p, out, errOut := newTestPrinter(false)

	p.Success("logged in as %s", "bursar@uni.edu")
	p.Info("department %d", 5)
	p.Warning("verification status unknown")
	p.Error("backend unavailable")

	if got := out.String(); got != "[OK] logged in as bursar@uni.edu\ndepartment 5\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := errOut.String(); got != "[WARN] verification status unknown\n[ERROR] backend unavailable\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestPrinter_QuietSuppressesAllButErrors(t *testing.T) {
	p, out, errOut := newTestPrinter(true)

	p.Success("done")
	p.Print("plain")
	p.Header("Payments")
	p.Warning("careful")
	p.Error("failed")

	if out.Len() != 0 {
		t.Errorf("expected no stdout in quiet mode, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "[ERROR] failed") {
		t.Errorf("expected error on stderr, got %q", errOut.String())
	}
	if strings.Contains(errOut.String(), "careful") {
		t.Errorf("warning should be suppressed in quiet mode")
	}
}

func TestPrinter_StatusBadgePlain(t *testing.T) {
	p, _, _ := newTestPrinter(false)
	if got := p.StatusBadge("verified"); got != "[verified]" {
		t.Errorf("StatusBadge = %q, want [verified]", got)
	}
}

func TestFormatError(t *testing.T) {
	p, _, errOut := newTestPrinter(false)

	p.FormatError(&CLIError{
		Summary:    "session expired",
		Detail:     "the refresh token was rejected",
		Suggestion: "run 'studentpay login'",
		ExitCode:   ExitAuthRequired,
	})

	want := "[ERROR] session expired\n  Cause: the refresh token was rejected\n  Suggestion: run 'studentpay login'\n"
	if got := errOut.String(); got != want {
		t.Errorf("FormatError output = %q, want %q", got, want)
	}
}

func TestPrintHints(t *testing.T) {
	p, out, _ := newTestPrinter(false)

	p.PrintHints("login")
	p.PrintHints("unknown-command")

	want := "\nSee also: studentpay status, studentpay dashboard\n"
	if got := out.String(); got != want {
		t.Errorf("PrintHints output = %q, want %q", got, want)
	}
}

func TestTable_Render(t *testing.T) {
	p, out, _ := newTestPrinter(false)

	table := p.NewTable([]string{"ID", "Title", "Amount"})
	table.AddRow("7", "Dues", "5000")
	table.AddRow("8", "Lab fee", "2500")
	table.Render()

	if table.Len() != 2 {
		t.Errorf("Len = %d, want 2", table.Len())
	}
	for _, want := range []string{"Dues", "Lab fee", "5000"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table output missing %q:\n%s", want, out.String())
		}
	}
}
