// Preflight check: verifies the Python interpreter and the sandbox work
// before a long scoring run is started.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"

	"github.com/programme-lv/ranker/internal/environment"
	"github.com/programme-lv/ranker/internal/sandbox"
)

type checkRow struct {
	unit    string
	ok      bool
	message string
}

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelWarn,
		TimeFormat: time.TimeOnly,
	})))

	cfg, err := environment.Read()
	if err != nil {
		color.Red("config: %v", err)
		os.Exit(1)
	}

	rows := []checkRow{checkInterpreter(cfg.PythonBin)}
	if rows[0].ok {
		rows = append(rows,
			checkSandbox(cfg.PythonBin),
			checkDigitFlag(cfg.PythonBin),
		)
	}

	failed := false
	for _, row := range rows {
		status := color.GreenString("OKAY")
		if !row.ok {
			status = color.RedString("ERROR")
			failed = true
		}
		fmt.Printf("%-24s %s  %s\n", row.unit, status, row.message)
	}
	if failed {
		os.Exit(1)
	}
}

func checkInterpreter(pythonBin string) checkRow {
	path, err := exec.LookPath(pythonBin)
	if err != nil {
		return checkRow{unit: "interpreter", message: err.Error()}
	}
	out, err := exec.Command(pythonBin, "--version").CombinedOutput()
	if err != nil {
		return checkRow{unit: "interpreter", message: err.Error()}
	}
	return checkRow{
		unit:    "interpreter",
		ok:      true,
		message: strings.TrimSpace(string(out)) + " at " + path,
	}
}

// checkSandbox runs a hello-world through a disposable box the same way the
// scorer runs candidate tests.
func checkSandbox(pythonBin string) checkRow {
	box, err := sandbox.NewBox()
	if err != nil {
		return checkRow{unit: "sandbox", message: err.Error()}
	}
	defer box.Close()

	if err := box.AddFile("program.py", []byte("print('hello world')\n")); err != nil {
		return checkRow{unit: "sandbox", message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	proc, err := box.Run(ctx, []string{pythonBin, "program.py"}, nil)
	if err != nil {
		return checkRow{unit: "sandbox", message: err.Error()}
	}
	m, err := proc.Wait()
	if err != nil {
		return checkRow{unit: "sandbox", message: err.Error()}
	}
	if m.ExitCode != 0 || strings.TrimSpace(m.Stdout) != "hello world" {
		return checkRow{unit: "sandbox", message: fmt.Sprintf("exit %d, stdout %q, stderr %q", m.ExitCode, m.Stdout, m.Stderr)}
	}
	return checkRow{unit: "sandbox", ok: true, message: "hello world round-trip"}
}

// checkDigitFlag verifies the interpreter accepts the unlimited
// int-to-str-digits flag the scorer passes on every run.
func checkDigitFlag(pythonBin string) checkRow {
	out, err := exec.Command(pythonBin, "-X", "int_max_str_digits=0", "-c", "print(len(str(10**10000)))").CombinedOutput()
	if err != nil {
		return checkRow{unit: "digit limit flag", message: err.Error() + ": " + strings.TrimSpace(string(out))}
	}
	if strings.TrimSpace(string(out)) != "10001" {
		return checkRow{unit: "digit limit flag", message: "unexpected output " + strings.TrimSpace(string(out))}
	}
	return checkRow{unit: "digit limit flag", ok: true, message: "large int printing works"}
}
