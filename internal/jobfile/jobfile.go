// Package jobfile loads and validates cymirs job files.
//
// A job file is a newline-delimited list of TAG=value assignments. Lines
// starting with '#' are comments. Tags are case-insensitive; every known tag
// must be present exactly once, and each value must pass the rule of its
// tag. Relative paths are resolved against the directory holding the job
// file.
package jobfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leefowlercu/cymirs/internal/fsutil"
	"github.com/leefowlercu/cymirs/internal/notify"
)

// Tag names a job file setting.
type Tag string

// Job file tags.
const (
	TagCircFile     Tag = "CIRC_INFO_FILE"
	TagRegionFile   Tag = "REGION_FILE"
	TagMirFile      Tag = "MIR_INFO_FILE"
	TagGenomeFile   Tag = "GENOME_FILE"
	TagOutputDir    Tag = "OUTPUT_DIR"
	TagSigPValue    Tag = "SIG_PVALUE"
	TagFoldChangeUp Tag = "FOLDCHNG_UP"
	TagFoldChangeDn Tag = "FOLDCHNG_DOWN"
	TagKeepTemp     Tag = "KEEP_TEMP_FILES"
	TagOutputFormat Tag = "SSHEET_OUT_FORMAT"
	TagTopN         Tag = "TOP_N_VAL"
	TagKeepAll      Tag = "KEEP_ALL"
	TagVerbosity    Tag = "VERBOSITY"
	TagEmail        Tag = "EMAIL"
	TagEmailOn      Tag = "EMAIL_ON"
	TagTextNumber   Tag = "TEXT_NUM"
	TagTextOn       Tag = "TEXT_ON"
)

// Verbosity values.
const (
	VerbositySilent  = "silent"
	VerbosityNormal  = "normal"
	VerbosityVerbose = "verbose"
)

// Choices for the restricted-choice tags.
var (
	Verbosities   = []string{VerbositySilent, VerbosityNormal, VerbosityVerbose}
	OutputFormats = []string{"tsv", "csv", "xlsx"}
)

// Job is a loaded and validated job file. It is not modified after Load.
type Job struct {
	// Path is the absolute path of the job file, empty when parsed from a
	// reader.
	Path string

	CircFile   string
	RegionFile string
	MirFile    string
	GenomeFile string
	OutputDir  string

	SigPValue      float64
	FoldChangeUp   float64
	FoldChangeDown float64
	// FoldChangeDownDefaulted is set when FOLDCHNG_DOWN was blank and
	// derived from FOLDCHNG_UP.
	FoldChangeDownDefaulted bool

	KeepTempFiles bool
	OutputFormats []string
	TopN          int
	KeepAll       bool
	Verbosity     string

	Email      string
	EmailOn    notify.Triggers
	TextNumber string
	TextOn     notify.Triggers
}

// rule is the validation rule of one tag. set parses value, which is never
// blank, into job.
type rule struct {
	tag   Tag
	blank bool
	set   func(job *Job, value, baseDir string) error
}

// rules lists every tag in job file order.
var rules = []rule{
	{TagCircFile, true, func(j *Job, v, base string) (err error) {
		j.CircFile, err = parseFile(v, base)
		return err
	}},
	{TagRegionFile, true, func(j *Job, v, base string) (err error) {
		j.RegionFile, err = parseFile(v, base)
		return err
	}},
	{TagMirFile, false, func(j *Job, v, base string) (err error) {
		j.MirFile, err = parseFile(v, base)
		return err
	}},
	{TagGenomeFile, false, func(j *Job, v, base string) (err error) {
		j.GenomeFile, err = parseFasta(v, base)
		return err
	}},
	{TagOutputDir, false, func(j *Job, v, base string) (err error) {
		j.OutputDir, err = parseDir(v, base)
		return err
	}},
	{TagSigPValue, false, func(j *Job, v, _ string) (err error) {
		j.SigPValue, err = parseExpr(v, probability)
		return err
	}},
	{TagFoldChangeUp, false, func(j *Job, v, _ string) (err error) {
		j.FoldChangeUp, err = parseExpr(v, positive)
		return err
	}},
	{TagFoldChangeDn, true, func(j *Job, v, _ string) (err error) {
		j.FoldChangeDown, err = parseExpr(v, positive)
		return err
	}},
	{TagKeepTemp, false, func(j *Job, v, _ string) (err error) {
		j.KeepTempFiles, err = parseYesNo(v)
		return err
	}},
	{TagOutputFormat, false, func(j *Job, v, _ string) (err error) {
		j.OutputFormats, err = parseChoiceList(v, OutputFormats)
		return err
	}},
	{TagTopN, false, func(j *Job, v, _ string) (err error) {
		j.TopN, err = parseCount(v)
		return err
	}},
	{TagKeepAll, false, func(j *Job, v, _ string) (err error) {
		j.KeepAll, err = parseYesNo(v)
		return err
	}},
	{TagVerbosity, false, func(j *Job, v, _ string) (err error) {
		j.Verbosity, err = parseChoice(v, Verbosities)
		return err
	}},
	{TagEmail, true, func(j *Job, v, _ string) (err error) {
		j.Email, err = parseEmail(v)
		return err
	}},
	{TagEmailOn, false, func(j *Job, v, _ string) (err error) {
		j.EmailOn, err = notify.ParseTriggers(v)
		return err
	}},
	{TagTextNumber, true, func(j *Job, v, _ string) (err error) {
		j.TextNumber, err = parsePhone(v)
		return err
	}},
	{TagTextOn, false, func(j *Job, v, _ string) (err error) {
		j.TextOn, err = notify.ParseTriggers(v)
		return err
	}},
}

var knownTags = func() map[Tag]bool {
	m := make(map[Tag]bool, len(rules))
	for _, r := range rules {
		m[r.tag] = true
	}
	return m
}()

// Tags returns every job file tag in job file order.
func Tags() []Tag {
	tags := make([]Tag, 0, len(rules))
	for _, r := range rules {
		tags = append(tags, r.tag)
	}
	return tags
}

// Load reads and validates the job file at path.
func Load(path string) (*Job, error) {
	abs, err := fsutil.Resolve(path, "")
	if err != nil || abs == "" || !fsutil.IsRegularFile(abs) {
		return nil, &Error{Msg: fmt.Sprintf("invalid job file path %q", path), Code: CodeBadPath}
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, &Error{Msg: "could not open job file", Code: CodeUnreadable, Err: err}
	}
	defer f.Close()

	job, err := Parse(f, filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	job.Path = abs
	return job, nil
}

// Parse reads and validates a job file from r. Relative paths in the job
// file are resolved against baseDir.
func Parse(r io.Reader, baseDir string) (*Job, error) {
	raw := make(map[Tag]string, len(rules))
	lines := make(map[Tag]int, len(rules))

	scanner := bufio.NewScanner(r)
	lnum := 0
	for scanner.Scan() {
		lnum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || line[0] == '#' {
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, lineError(CodeNoAssignment, lnum, "job file invalid (no '=')")
		}

		tag := Tag(strings.ToUpper(strings.TrimSpace(name)))
		if !knownTags[tag] {
			return nil, lineError(CodeUnknownTag, lnum, fmt.Sprintf("job file invalid (unrecognized tag %q)", strings.TrimSpace(name)))
		}
		if first, dup := lines[tag]; dup {
			return nil, lineError(CodeDuplicateTag, lnum, fmt.Sprintf("job file invalid (%s already set @ line %d)", tag, first))
		}

		raw[tag] = strings.TrimSpace(value)
		lines[tag] = lnum
	}
	if err := scanner.Err(); err != nil {
		return nil, &Error{Msg: "could not read job file", Code: CodeUnreadable, Err: err}
	}

	job := &Job{}
	for _, r := range rules {
		value, ok := raw[r.tag]
		if !ok {
			return nil, &Error{Msg: fmt.Sprintf("job file invalid (missing tag %s)", r.tag), Code: CodeMissingTag, Tag: r.tag}
		}
		if value == "" {
			if !r.blank {
				return nil, valueError(r.tag, lines[r.tag], errBlank)
			}
			continue
		}
		if err := r.set(job, value, baseDir); err != nil {
			return nil, valueError(r.tag, lines[r.tag], err)
		}
	}

	if err := job.finish(lines); err != nil {
		return nil, err
	}
	return job, nil
}

// finish fills defaults and applies the rules spanning several tags.
func (j *Job) finish(lines map[Tag]int) error {
	switch {
	case j.CircFile == "" && j.RegionFile == "":
		return &Error{
			Msg:  fmt.Sprintf("job file invalid (one of %s or %s must be set)", TagCircFile, TagRegionFile),
			Code: CodeConflict,
		}
	case j.CircFile != "" && j.RegionFile != "":
		return &Error{
			Msg:  fmt.Sprintf("job file invalid (only one of %s or %s may be set)", TagCircFile, TagRegionFile),
			Code: CodeConflict,
			Line: lines[TagRegionFile],
		}
	}

	if j.FoldChangeDown == 0 {
		j.FoldChangeDown = 1 / j.FoldChangeUp
		j.FoldChangeDownDefaulted = true
	}

	if j.FoldChangeUp <= j.FoldChangeDown {
		return &Error{
			Msg: fmt.Sprintf("job file invalid (%s=%s must be greater than %s=%s)",
				TagFoldChangeUp, formatFloat(j.FoldChangeUp), TagFoldChangeDn, formatFloat(j.FoldChangeDown)),
			Code: CodeConflict,
			Line: lines[TagFoldChangeUp],
			Tag:  TagFoldChangeUp,
		}
	}

	return nil
}

// UsesCircles reports whether the job reads a circRNA info file rather than
// a plain region file.
func (j *Job) UsesCircles() bool {
	return j.CircFile != ""
}

// Values returns the normalised value of every tag, as it would be written
// back to a job file.
func (j *Job) Values() map[Tag]string {
	return map[Tag]string{
		TagCircFile:     j.CircFile,
		TagRegionFile:   j.RegionFile,
		TagMirFile:      j.MirFile,
		TagGenomeFile:   j.GenomeFile,
		TagOutputDir:    j.OutputDir,
		TagSigPValue:    formatFloat(j.SigPValue),
		TagFoldChangeUp: formatFloat(j.FoldChangeUp),
		TagFoldChangeDn: formatFloat(j.FoldChangeDown),
		TagKeepTemp:     formatYesNo(j.KeepTempFiles),
		TagOutputFormat: strings.Join(j.OutputFormats, ","),
		TagTopN:         strconv.Itoa(j.TopN),
		TagKeepAll:      formatYesNo(j.KeepAll),
		TagVerbosity:    j.Verbosity,
		TagEmail:        j.Email,
		TagEmailOn:      j.EmailOn.String(),
		TagTextNumber:   j.TextNumber,
		TagTextOn:       j.TextOn.String(),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
