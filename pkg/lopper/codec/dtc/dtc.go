// Package dtc wraps the external "cpp" and "dtc" binaries the
// original tool shells out to for preprocessing and validating DTS
// sources. Lopper's own tree model and dts/yaml codecs do the
// actual transformation; this package only handles the
// C-preprocessor-macro and dtc-syntax-check steps that happen before
// and after, the same division of labor the original tool used.
package dtc

import (
	"bytes"
	"fmt"
	"os/exec"
)

// Preprocess runs the source file through cpp with the given include
// directories and preprocessor defines, returning the expanded text.
func Preprocess(path string, includeDirs []string, defines []string) ([]byte, error) {
	args := []string{"-E", "-P", "-x", "assembler-with-cpp"}
	for _, d := range includeDirs {
		args = append(args, "-I", d)
	}
	for _, d := range defines {
		args = append(args, "-D"+d)
	}
	args = append(args, path)

	cmd := exec.Command("cpp", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("dtc: cpp %s: %w: %s", path, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// CheckSyntax asks dtc to parse dtsSource (already-preprocessed DTS
// text) and report any syntax errors, without producing a binary blob
// (`-O dts` round-trips to stdout so nothing touches disk).
func CheckSyntax(dtsSource []byte, includeDirs []string) error {
	args := []string{"-I", "dts", "-O", "dts", "-o", "-"}
	for _, d := range includeDirs {
		args = append(args, "-i", d)
	}
	cmd := exec.Command("dtc", args...)
	cmd.Stdin = bytes.NewReader(dtsSource)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = nilWriter{}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("dtc: syntax check: %w: %s", err, stderr.String())
	}
	return nil
}

// ToFDT compiles dtsSource to a flattened device tree blob via dtc -O dtb.
func ToFDT(dtsSource []byte, includeDirs []string) ([]byte, error) {
	args := []string{"-I", "dts", "-O", "dtb", "-o", "-"}
	for _, d := range includeDirs {
		args = append(args, "-i", d)
	}
	cmd := exec.Command("dtc", args...)
	cmd.Stdin = bytes.NewReader(dtsSource)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("dtc: compile to dtb: %w: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }
