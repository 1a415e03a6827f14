package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/hargabyte/clsinfo/internal/config"
	"github.com/hargabyte/clsinfo/internal/decl"
	"github.com/hargabyte/clsinfo/internal/diag"
	"github.com/hargabyte/clsinfo/internal/exclude"
	"github.com/hargabyte/clsinfo/internal/interp"
	"github.com/hargabyte/clsinfo/internal/journal"
	"github.com/hargabyte/clsinfo/internal/lookup"
	"github.com/hargabyte/clsinfo/internal/output"
	"github.com/hargabyte/clsinfo/internal/parser"
	"github.com/spf13/cobra"
)

// Shared utility functions for command implementations

var (
	okFmt    = color.New(color.FgGreen).SprintFunc()
	warnFmt  = color.New(color.FgYellow).SprintFunc()
	errorFmt = color.New(color.FgRed, color.Bold).SprintFunc()
	nameFmt  = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// loadConfig reads the --config file, or the nearest .clsinfo/config.yaml.
// configDir is empty when neither exists.
func loadConfig() (cfg *config.Config, configDir string, err error) {
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
		if err != nil {
			return nil, "", err
		}
		return cfg, filepath.Dir(configPath), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}
	cfg, err = config.Load(cwd)
	if err != nil {
		return nil, "", err
	}
	if dir, err := config.FindConfigDir(cwd); err == nil {
		configDir = dir
	}
	return cfg, configDir, nil
}

// session is the state one command works on: a loaded tree with its
// resolver, the sandbox executor and, when enabled, the snippet journal.
type session struct {
	cfg       *config.Config
	configDir string
	files     []string

	tree    *decl.Tree
	res     *lookup.Resolver
	rep     diag.Reporter
	box     *interp.Sandbox
	journal *journal.Journal
	log     *snippetLog
}

// snippetLog keeps the snippets run by this command and forwards them to
// the journal when there is one.
type snippetLog struct {
	journal  *journal.Journal
	snippets []*output.SnippetOutput
}

func (l *snippetLog) Record(code, result string) error {
	entry := &output.SnippetOutput{
		ID:         int64(len(l.snippets) + 1),
		Code:       code,
		Result:     result,
		ExecutedAt: time.Now().UTC().Format(time.RFC3339),
	}
	l.snippets = append(l.snippets, entry)
	if l.journal == nil {
		return nil
	}
	entry.Session = l.journal.Session()
	return l.journal.Record(code, result)
}

// openSession loads the headers under paths (the working directory when
// empty). The journal is opened only when withJournal is set, the config
// enables it and a config directory exists to hold it.
func openSession(cmd *cobra.Command, paths []string, withJournal bool) (*session, error) {
	cfg, configDir, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:       cfg,
		configDir: configDir,
		rep:       diag.NewLogger(cmd.ErrOrStderr(), verbose),
	}

	if withJournal && cfg.Journal.IsEnabled() && configDir != "" {
		j, err := journal.OpenPath(cfg.JournalPath(configDir))
		if err != nil {
			return nil, err
		}
		s.journal = j
	}

	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := exclude.CollectHeaders(paths, cfg.Scan.Extensions, cfg.Scan.Exclude)
	if err != nil {
		s.Close()
		return nil, err
	}
	if len(files) == 0 {
		s.Close()
		return nil, fmt.Errorf("no headers found under %v (extensions %v)", paths, cfg.Scan.Extensions)
	}
	s.files = files

	tree, syntaxErrors, err := decl.LoadFiles(cfg.Layout.Options(), files)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("loading headers: %w", err)
	}
	s.tree = tree
	reportSyntaxErrors(cmd.ErrOrStderr(), len(files), syntaxErrors)

	s.res = lookup.NewResolver(tree, cfg.Scan.StdNames)
	s.log = &snippetLog{journal: s.journal}
	s.box = interp.NewSandbox(tree, s.log, s.rep)
	if s.journal != nil {
		s.trackSources(cmd.ErrOrStderr())
	}
	return s, nil
}

// trackSources records the content hash of every loaded header and notes
// the ones that changed since the journal last saw them. Recorded headers
// that no longer exist on disk are forgotten.
func (s *session) trackSources(w io.Writer) {
	s.pruneSources(w)
	for _, file := range s.files {
		content, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		hash := journal.HashContent(content)
		changed, err := s.journal.IsSourceChanged(file, hash)
		if err != nil {
			s.rep.Debugf("session.trackSources", "%s: %v", file, err)
			continue
		}
		if !changed {
			continue
		}
		_, err = s.journal.GetSourceHash(file)
		switch {
		case err == nil && verbose:
			fmt.Fprintf(w, "%s %s changed since last load\n", warnFmt("~"), file)
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			s.rep.Debugf("session.trackSources", "%s: %v", file, err)
		}
		if err := s.journal.SetSourceLoaded(file, hash); err != nil {
			s.rep.Debugf("session.trackSources", "%s: %v", file, err)
		}
	}
}

func (s *session) pruneSources(w io.Writer) {
	recorded, err := s.journal.Sources()
	if err != nil {
		s.rep.Debugf("session.pruneSources", "%v", err)
		return
	}
	valid := make(map[string]bool, len(s.files)+len(recorded))
	for _, file := range s.files {
		valid[file] = true
	}
	for _, e := range recorded {
		if _, err := os.Stat(e.FilePath); err == nil {
			valid[e.FilePath] = true
		}
	}
	pruned, err := s.journal.PruneSources(valid)
	if err != nil {
		s.rep.Debugf("session.pruneSources", "%v", err)
	}
	if pruned > 0 && verbose {
		fmt.Fprintf(w, "%s forgot %d removed header(s)\n", warnFmt("~"), pruned)
	}
}

// Close releases the tree and the journal.
func (s *session) Close() {
	if s.tree != nil {
		s.tree.Close()
	}
	if s.journal != nil {
		s.journal.Close()
	}
}

func reportSyntaxErrors(w io.Writer, files int, errs []*parser.ParseError) {
	if len(errs) == 0 {
		return
	}
	if !verbose {
		fmt.Fprintf(w, "%s %d syntax errors in %d headers (use -v to list them)\n",
			warnFmt("warning:"), len(errs), files)
		return
	}
	for _, e := range errs {
		fmt.Fprintf(w, "%s %v\n", warnFmt("warning:"), e)
	}
}

// writeOutput renders v in the --format format, or the configured one.
func writeOutput(cmd *cobra.Command, cfg *config.Config, v any) error {
	name := outputFormat
	if name == "" {
		name = cfg.Output.Format
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), format, v)
}
