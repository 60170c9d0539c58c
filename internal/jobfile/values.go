package jobfile

import (
	"bufio"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/leefowlercu/cymirs/internal/expr"
	"github.com/leefowlercu/cymirs/internal/fsutil"
)

var errBlank = errors.New("value must not be blank")

var validate = validator.New()

func parseFile(value, baseDir string) (string, error) {
	path, err := fsutil.Resolve(value, baseDir)
	if err != nil {
		return "", err
	}
	if !fsutil.IsRegularFile(path) {
		return "", fmt.Errorf("%s is not an existing file", path)
	}
	return path, nil
}

// parseFasta accepts a FASTA file, plain or gzipped. FASTQ files are
// rejected.
func parseFasta(value, baseDir string) (string, error) {
	path, err := parseFile(value, baseDir)
	if err != nil {
		return "", err
	}

	rc, err := fsutil.OpenMaybeGzip(path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line[0] {
		case '>':
			return path, nil
		case '@':
			return "", fmt.Errorf("%s looks like FASTQ; a FASTA genome is required", path)
		default:
			return "", fmt.Errorf("%s is not a FASTA file (first record does not start with '>')", path)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read %s; %w", path, err)
	}
	return "", fmt.Errorf("%s is empty", path)
}

func parseDir(value, baseDir string) (string, error) {
	path, err := fsutil.Resolve(value, baseDir)
	if err != nil {
		return "", err
	}
	if err := fsutil.EnsureDir(path); err != nil {
		return "", fmt.Errorf("cannot use output directory; %w", err)
	}
	return path, nil
}

// bound checks an evaluated expression against a tag's range.
type bound func(float64) error

func probability(v float64) error {
	if v <= 0 || v > 1 {
		return fmt.Errorf("must be in (0, 1], got %s", formatFloat(v))
	}
	return nil
}

func positive(v float64) error {
	if v <= 0 {
		return fmt.Errorf("must be greater than 0, got %s", formatFloat(v))
	}
	return nil
}

func parseExpr(value string, check bound) (float64, error) {
	v, err := expr.Eval(value)
	if err != nil {
		return 0, err
	}
	if err := check(v); err != nil {
		return 0, err
	}
	return v, nil
}

// parseCount accepts a positive decimal integer. Expressions are not
// allowed.
func parseCount(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", value)
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1, got %d", n)
	}
	return n, nil
}

func parseYesNo(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "yes", "y", "true":
		return true, nil
	case "no", "n", "false":
		return false, nil
	default:
		return false, fmt.Errorf("must be Yes or No, got %q", value)
	}
}

func parseChoice(value string, choices []string) (string, error) {
	v := strings.ToLower(value)
	if !slices.Contains(choices, v) {
		return "", fmt.Errorf("must be one of: %s; got %q", strings.Join(choices, ", "), value)
	}
	return v, nil
}

// parseChoiceList accepts a comma-separated list, without spaces, of
// distinct choices.
func parseChoiceList(value string, choices []string) ([]string, error) {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item == "" {
			return nil, errors.New("empty item in list")
		}
		v, err := parseChoice(item, choices)
		if err != nil {
			return nil, err
		}
		if slices.Contains(out, v) {
			return nil, fmt.Errorf("%q listed twice", v)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseEmail(value string) (string, error) {
	if err := validate.Var(value, "email"); err != nil {
		return "", fmt.Errorf("%q is not a valid email address", value)
	}
	return value, nil
}

// parsePhone strips common separators and returns the number in E.164
// form, e.g. "+15551234567".
func parsePhone(value string) (string, error) {
	number := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, value)
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}

	if err := validate.Var(number, "e164"); err != nil {
		return "", fmt.Errorf("%q is not a valid phone number", value)
	}
	return number, nil
}
