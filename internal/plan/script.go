package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"treesync/internal/model"
)

const (
	leftRootVar  = "LEFTDIR"
	rightRootVar = "RIGHTDIR"
	timeLayout   = "2006-01-02 15:04:05"
)

//ScriptWriter renders a plan as a POSIX shell script.
//After the first failed write every further call returns the same error.
type ScriptWriter struct {
	w      io.Writer
	target Target
	err    error
}

func NewScriptWriter(w io.Writer) *ScriptWriter {
	return &ScriptWriter{w: w}
}

func (s *ScriptWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

func (s *ScriptWriter) echo(format string, args ...any) {
	s.printf("echo %s\n", shellQuote(fmt.Sprintf(format, args...)))
}

func (s *ScriptWriter) Header(h Header) error {
	s.target = h.Target
	s.printf("#!/bin/sh\n")
	s.printf("# synchronization plan generated by treesync\n\n")
	s.variable(leftRootVar, h.Target.LeftRoot)
	s.variable(rightRootVar, h.Target.RightRoot)
	if h.Target.IsRemote() {
		s.variable("SSHUSER", h.Target.SSHUser)
		s.variable("SSHHOST", h.Target.SSHHost)
		s.variable("SSHPORT", fmt.Sprint(h.Target.SSHPort))
	}
	return s.err
}

//variable assigns a script variable; an empty value has to come from the environment.
func (s *ScriptWriter) variable(name, value string) {
	if value == "" {
		s.printf("%s=\"${%s:?%s is not set}\"\n", name, name, name)
		return
	}
	s.printf("%s=%s\n", name, shellQuote(value))
}

func (s *ScriptWriter) BeginSection(sec Section) error {
	s.printf("\n# %s: directories %s, files %s\n", sec.Category, sec.DirectoryAction, sec.FileAction)
	return s.err
}

func (s *ScriptWriter) Directory(m DirectoryMarker) error {
	s.echo("Directory %s (%d/%d)", m.Directory.Path, m.Index, m.Total)
	return s.err
}

func (s *ScriptWriter) File(m FileMarker) error {
	s.echo("File %s (%d/%d) [%s, %s]", m.File.Path, m.Index, m.Total,
		m.File.ModTime.Format(timeLayout), humanBytes(m.File.Size))
	return s.err
}

func (s *ScriptWriter) Operation(op model.Operation) error {
	cmd, err := s.command(op)
	if err != nil {
		return err
	}
	s.printf("%s\n", cmd)
	return s.err
}

func (s *ScriptWriter) EndSection(sum SectionSummary) error {
	s.echo("%s: %s", sum.Category, describe(sum.Summary))
	return s.err
}

func (s *ScriptWriter) End(total Summary) error {
	s.printf("\n")
	s.echo("TOTAL: %s", describe(total))
	return s.err
}

func (s *ScriptWriter) command(op model.Operation) (string, error) {
	dst := rootVar(op.Direction)
	rel := op.Entry.RelPath()
	remote := op.Locality == model.Remote

	switch {
	case op.Entry.IsDir() && op.Action == model.ActionCreate:
		if remote {
			return s.ssh("mkdir -p " + remotePath(dst, rel)), nil
		}
		return "mkdir -p " + localPath(dst, rel), nil
	case op.Action == model.ActionDelete:
		if remote {
			return s.ssh("rm -rf " + remotePath(dst, rel)), nil
		}
		return "rm -rf " + localPath(dst, rel), nil
	case !op.Entry.IsDir() && op.Action == model.ActionCopy:
		src := rootVar(op.Source())
		dir := strings.TrimPrefix(op.Entry.Dir(), ".")
		if remote {
			return fmt.Sprintf(`scp -P "$SSHPORT" %s "$SSHUSER@$SSHHOST:%s"`,
				localPath(src, rel), remotePath(dst, dir)), nil
		}
		return fmt.Sprintf("cp -f %s %s", localPath(src, rel), localPath(dst, dir)), nil
	}
	return "", fmt.Errorf("cannot render %s of %s %s", op.Action, op.Entry.Kind, op.Entry.Path)
}

func (s *ScriptWriter) ssh(remoteCmd string) string {
	return fmt.Sprintf(`ssh -p "$SSHPORT" "$SSHUSER@$SSHHOST" "%s"`, remoteCmd)
}

func rootVar(side model.Direction) string {
	if side == model.Left {
		return leftRootVar
	}
	return rightRootVar
}

func describe(s Summary) string {
	return fmt.Sprintf("%d directories, %d files, %s, %d operations",
		s.Directories, s.Files, humanBytes(s.Bytes), s.Operations)
}

func humanBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
