// Package runner drives a cymirs job: it loads the job file, wires job
// notifications into the logger, stages the circle regions for the overlap
// step and records the run in the history database.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/leefowlercu/cymirs/internal/config"
	"github.com/leefowlercu/cymirs/internal/fsutil"
	"github.com/leefowlercu/cymirs/internal/jobfile"
	"github.com/leefowlercu/cymirs/internal/logging"
	"github.com/leefowlercu/cymirs/internal/metrics"
	"github.com/leefowlercu/cymirs/internal/notify"
	"github.com/leefowlercu/cymirs/internal/regions"
	"github.com/leefowlercu/cymirs/internal/storage"
)

// StagedBEDName is the name of the staged region file inside the temp
// directory.
const StagedBEDName = "regions.bed"

// LogManager is the part of logging.Manager the runner uses.
type LogManager interface {
	Logger() *slog.Logger
	Fallback() *slog.Logger
	SetStderrLevel(level slog.Level)
	Attach(h slog.Handler) (detach func())
}

// Channel kinds passed to a SenderFactory.
const (
	ChannelEmail = "email"
	ChannelText  = "text"
)

// SenderFactory builds the sender of a notification channel. kind is
// ChannelEmail or ChannelText and address the EMAIL or TEXT_NUM value.
type SenderFactory func(kind, address string) (notify.Sender, error)

// Options configures a Runner.
type Options struct {
	// Config supplies notification and history settings. Defaults apply
	// when nil.
	Config *config.Config
	Logs   LogManager
	// Store records runs. Nil disables run history.
	Store *storage.Storage
	// Senders builds notification senders. Nil means MailSenders(Config).
	Senders SenderFactory
	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// Runner runs jobs.
type Runner struct {
	cfg     *config.Config
	logs    LogManager
	store   *storage.Storage
	senders SenderFactory
	now     func() time.Time
}

// Result describes a finished run.
type Result struct {
	RunID   string
	Job     *jobfile.Job
	Summary regions.Summary
	// TempDir is the staging directory; empty once removed.
	TempDir  string
	Duration time.Duration
}

// New returns a Runner.
func New(opts Options) *Runner {
	r := &Runner{
		cfg:     opts.Config,
		logs:    opts.Logs,
		store:   opts.Store,
		senders: opts.Senders,
		now:     opts.Now,
	}
	if r.cfg == nil {
		r.cfg = config.LoadWithDefaults()
	}
	if r.logs == nil {
		r.logs = logging.Default()
	}
	if r.senders == nil {
		r.senders = MailSenders(r.cfg.Notify)
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Run runs the job file at path. A job file that fails to load returns a
// *jobfile.Error; the run is recorded either way.
func (r *Runner) Run(ctx context.Context, path string) (*Result, error) {
	start := r.now()

	abs, err := fsutil.Resolve(path, "")
	if err != nil || abs == "" {
		abs = path
	}

	res := &Result{RunID: r.startRun(ctx, abs, start)}
	log := r.logs.Logger().With("run_id", res.RunID)

	job, err := jobfile.Load(abs)
	if err != nil {
		log.Debug("failed to load job file", "path", abs, "error", err)
		r.finishRun(ctx, res, start, err)
		return res, err
	}
	res.Job = job

	if level, ok := logging.VerbosityLevel(job.Verbosity); ok {
		r.logs.SetStderrLevel(level)
	}

	notifier := r.notifier(job, log)
	if len(notifier.Channels()) > 0 {
		notifier.Start()
		detach := r.logs.Attach(notifier)
		defer detach()
	}

	err = r.process(ctx, job, res, log)
	r.finishRun(ctx, res, start, err)
	return res, err
}

// process runs the job steps after the job file is loaded.
func (r *Runner) process(ctx context.Context, job *jobfile.Job, res *Result, log *slog.Logger) error {
	log.Info("job file loaded", notify.AttrKey, notify.StepMajor, "path", job.Path)
	values := job.Values()
	for _, tag := range jobfile.Tags() {
		log.Debug("job setting", "tag", string(tag), "value", values[tag])
	}
	if job.FoldChangeDownDefaulted {
		log.Debug("FOLDCHNG_DOWN defaulted to 1/FOLDCHNG_UP", "value", job.FoldChangeDown)
	}

	if err := ctx.Err(); err != nil {
		return r.fail(log, "job cancelled", err)
	}

	intervals, summary, err := r.loadInputs(job, log)
	if err != nil {
		return r.fail(log, "failed to load input regions", err)
	}
	res.Summary = summary
	metrics.UpdateRegionMetrics(summary.Counts())

	if err := ctx.Err(); err != nil {
		return r.fail(log, "job cancelled", err)
	}

	tempDir, err := r.stage(job, intervals, log)
	if err != nil {
		return r.fail(log, "failed to stage regions", err)
	}
	res.TempDir = tempDir
	defer func() {
		if job.KeepTempFiles {
			log.Info("keeping temp files", "dir", tempDir)
			return
		}
		if err := os.RemoveAll(tempDir); err != nil {
			log.Warn("failed to remove temp files", "dir", tempDir, "error", err)
			return
		}
		res.TempDir = ""
	}()

	log.Info("miRNA target overlap not run; no overlap tool is configured",
		notify.AttrKey, notify.StepMajor,
		"mir_file", job.MirFile,
		"genome_file", job.GenomeFile,
	)

	log.Info("job finished", notify.AttrKey, notify.Finish, "output_dir", job.OutputDir)
	log.Info(rundownText(summary), notify.AttrKey, notify.Rundown,
		"total", summary.Total,
		"significant", summary.Significant,
		"up", summary.Up,
		"down", summary.Down,
		"significant_up", summary.SignificantUp,
		"significant_down", summary.SignificantDown,
		"undefined", summary.Undefined,
	)

	return nil
}

// loadInputs reads the circle file, or the plain region file when no
// circle file is set, and classifies the circles.
func (r *Runner) loadInputs(job *jobfile.Job, log *slog.Logger) ([]regions.Interval, regions.Summary, error) {
	if !job.UsesCircles() {
		log.Info("loading regions", notify.AttrKey, notify.StepMajor, "file", job.RegionFile)
		intervals, err := regions.LoadRegionFile(job.RegionFile)
		if err != nil {
			return nil, regions.Summary{}, err
		}
		log.Info("regions loaded", notify.AttrKey, notify.StepMinor, "count", len(intervals))
		return intervals, regions.Summary{Total: len(intervals)}, nil
	}

	log.Info("loading circles", notify.AttrKey, notify.StepMajor, "file", job.CircFile)
	circles, err := regions.LoadCircFile(job.CircFile)
	if err != nil {
		return nil, regions.Summary{}, err
	}

	summary := regions.Summarize(circles, regions.Thresholds{
		SigPValue:      job.SigPValue,
		FoldChangeUp:   job.FoldChangeUp,
		FoldChangeDown: job.FoldChangeDown,
	})
	log.Info("circles classified", notify.AttrKey, notify.StepMinor,
		"total", summary.Total,
		"significant", summary.Significant,
		"up", summary.Up,
		"down", summary.Down,
	)
	if summary.Total > 0 && summary.Significant == 0 {
		log.Warn("no circles are significant", "sig_pvalue", job.SigPValue)
	}
	if summary.Undefined > 0 {
		log.Debug("circles without a fold change", "count", summary.Undefined)
	}

	return regions.Intervals(circles), summary, nil
}

// stage writes the intervals as BED into a new temp directory under the
// output directory.
func (r *Runner) stage(job *jobfile.Job, intervals []regions.Interval, log *slog.Logger) (string, error) {
	dir, err := os.MkdirTemp(job.OutputDir, "cymirs-tmp-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory; %w", err)
	}

	path := filepath.Join(dir, StagedBEDName)
	f, err := os.Create(path)
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("failed to create %s; %w", path, err)
	}

	if err := regions.WriteBED(f, intervals); err != nil {
		f.Close()
		os.RemoveAll(dir)
		return "", fmt.Errorf("failed to write %s; %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("failed to write %s; %w", path, err)
	}

	log.Info("regions staged", notify.AttrKey, notify.StepMinor, "file", path, "count", len(intervals))
	return dir, nil
}

// fail logs err as a job error, which notifies error subscribers, and
// returns it wrapped.
func (r *Runner) fail(log *slog.Logger, msg string, err error) error {
	log.Error(msg, "error", err)
	return fmt.Errorf("%s; %w", msg, err)
}

// notifier builds the notification handler for job. Channels that cannot
// be configured are skipped with a warning.
func (r *Runner) notifier(job *jobfile.Job, log *slog.Logger) *notify.Handler {
	var channels []notify.Channel

	add := func(kind, address string, triggers notify.Triggers) {
		if address == "" {
			return
		}
		sender, err := r.senders(kind, address)
		if err != nil {
			log.Warn("notifications disabled", "channel", kind, "reason", err)
			return
		}
		channels = append(channels, notify.Channel{Name: kind, Sender: sender, Triggers: triggers})
	}
	add(ChannelEmail, job.Email, job.EmailOn)
	add(ChannelText, job.TextNumber, job.TextOn)

	n := r.cfg.Notify
	return notify.NewHandler(channels,
		notify.WithClock(r.now),
		notify.WithFallbackLogger(r.logs.Fallback()),
		notify.WithRateLimit(n.RatePerMinute, n.Burst),
		notify.WithSendTimeout(time.Duration(n.Timeout)*time.Second),
	)
}

// startRun records the start of a run and returns its id. History
// failures are logged, not returned.
func (r *Runner) startRun(ctx context.Context, path string, start time.Time) string {
	if r.store == nil {
		return uuid.NewString()
	}

	hash, _ := fsutil.HashFile(path)
	id, err := r.store.StartRun(context.WithoutCancel(ctx), path, hash, start)
	if err != nil {
		r.logs.Logger().Warn("failed to record run in history", "error", err)
		return uuid.NewString()
	}
	return id
}

// finishRun records the outcome of the run in the history and metrics.
func (r *Runner) finishRun(ctx context.Context, res *Result, start time.Time, runErr error) {
	finished := r.now()
	res.Duration = finished.Sub(start)

	status := storage.StatusSucceeded
	exitCode := 0
	if runErr != nil {
		status = storage.StatusFailed
		exitCode = exitCodeOf(runErr)
	}

	metrics.RecordJob(status, res.Duration, finished)
	log := r.logs.Logger()

	if r.store != nil {
		outcome := storage.RunOutcome{
			Status:   status,
			ExitCode: exitCode,
			Err:      runErr,
			Counts: storage.RunCounts{
				Total:       res.Summary.Total,
				Significant: res.Summary.Significant,
				Up:          res.Summary.Up,
				Down:        res.Summary.Down,
			},
		}
		// The history is written even when the job was cancelled.
		hctx := context.WithoutCancel(ctx)
		if err := r.store.FinishRun(hctx, res.RunID, finished, outcome); err != nil {
			log.Warn("failed to record run outcome", "run_id", res.RunID, "error", err)
		}
		if limit := r.cfg.History.Limit; limit > 0 {
			if n, err := r.store.PruneRuns(hctx, limit); err != nil {
				log.Warn("failed to prune run history", "error", err)
			} else if n > 0 {
				log.Debug("pruned run history", "deleted", n)
			}
		}
	}

	if path := config.ExpandPath(r.cfg.Metrics.Textfile); path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			log.Warn("failed to write metrics", "path", path, "error", err)
		}
	}
}

func exitCodeOf(err error) int {
	if code := jobfile.CodeOf(err); code > 0 {
		return code
	}
	return 1
}

func rundownText(s regions.Summary) string {
	return fmt.Sprintf("%d circles, %d significant (%d up, %d down)",
		s.Total, s.Significant, s.SignificantUp, s.SignificantDown)
}
