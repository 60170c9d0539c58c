package jobfile

import (
	"fmt"
	"io"
	"text/template"
)

// Template values for tags with a default.
const (
	DefaultOutputDir    = "./cymirs_out"
	DefaultSigPValue    = ".05"
	DefaultFoldChangeUp = "1.5"
	DefaultKeepTemp     = "No"
	DefaultOutputFormat = "xlsx"
	DefaultTopN         = "5"
	DefaultKeepAll      = "No"
	DefaultVerbosity    = VerbosityVerbose
	DefaultEvents       = "error,finish,rundown"
)

const templateText = `# cymirs job file
# lines starting with '#' are comments.
# relative paths are resolved against the directory of THIS file.
# every tag must be present; leave the value blank only where noted.
# multiple-choice values are case-insensitive.

#     ----    FILES    ----

# circRNA info file, tab-separated:
#     circ_id  gene_id  chrom  start  end  strand  reg  p-value
#     start and end are 0-based, [start, end) like BED.
#     an undefined reg is written na, NA, inf or INF.
# set exactly one of {{.Circ}} and {{.Region}}.
{{.Circ}}=

# plain BED region file (6 or more columns), used instead of {{.Circ}}.
{{.Region}}=

# miRNA info file, in the format described by TargetScan.
{{.Mir}}=

# genome file, FASTA (not FASTQ), plain or gzipped.
{{.Genome}}=

# directory all output files are written to; created when missing.
{{.OutputDir}}={{.DefOutputDir}}

#     ----    OTHER SETTINGS    ----

# largest p-value accepted as significant.
# expressions (e.g. 10^-2) are accepted.
{{.SigP}}={{.DefSigP}}

# minimum fold change for a circle to count as upregulated.
# must be greater than {{.FoldDown}}. expressions are accepted.
{{.FoldUp}}={{.DefFoldUp}}

# maximum fold change for a circle to count as downregulated.
# must be less than {{.FoldUp}}. expressions are accepted.
# blank means 1/{{.FoldUp}}.
{{.FoldDown}}=

# keep temp files after the run: Yes | No
{{.KeepTemp}}={{.DefKeepTemp}}

# spreadsheet formats, comma-separated without spaces: tsv | csv | xlsx
{{.Format}}={{.DefFormat}}

# N of the top-N miRNA overview per circle.
{{.TopN}}={{.DefTopN}}

# keep every miRNA in the final output instead of only the top N: Yes | No
{{.KeepAll}}={{.DefKeepAll}}

# stderr verbosity: silent (not recommended) | normal | verbose
{{.Verbosity}}={{.DefVerbosity}}

#     ----    STATUS UPDATES    ----

# address to email status updates to. blank disables email.
{{.Email}}=

# events that trigger an email, comma-separated without spaces:
#     step-minor | step-major
#     warning | error
#     after(N) | finish
#     rundown
# after(N) fires once the job has run for N minutes, e.g. after(60).
# rundown sends a summary of the result on completion.
{{.EmailOn}}={{.DefEvents}}

# phone number to text status updates to. blank disables texts.
{{.Text}}=

# events that trigger a text; same format as {{.EmailOn}}.
{{.TextOn}}={{.DefEvents}}
`

var jobTemplate = template.Must(template.New("job").Parse(templateText))

// WriteTemplate writes a commented job file holding every tag with its
// default value.
func WriteTemplate(w io.Writer) error {
	data := map[string]any{
		"Circ":         TagCircFile,
		"Region":       TagRegionFile,
		"Mir":          TagMirFile,
		"Genome":       TagGenomeFile,
		"OutputDir":    TagOutputDir,
		"SigP":         TagSigPValue,
		"FoldUp":       TagFoldChangeUp,
		"FoldDown":     TagFoldChangeDn,
		"KeepTemp":     TagKeepTemp,
		"Format":       TagOutputFormat,
		"TopN":         TagTopN,
		"KeepAll":      TagKeepAll,
		"Verbosity":    TagVerbosity,
		"Email":        TagEmail,
		"EmailOn":      TagEmailOn,
		"Text":         TagTextNumber,
		"TextOn":       TagTextOn,
		"DefOutputDir": DefaultOutputDir,
		"DefSigP":      DefaultSigPValue,
		"DefFoldUp":    DefaultFoldChangeUp,
		"DefKeepTemp":  DefaultKeepTemp,
		"DefFormat":    DefaultOutputFormat,
		"DefTopN":      DefaultTopN,
		"DefKeepAll":   DefaultKeepAll,
		"DefVerbosity": DefaultVerbosity,
		"DefEvents":    DefaultEvents,
	}

	if err := jobTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to write job file template; %w", err)
	}
	return nil
}
