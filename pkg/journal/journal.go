// Package journal keeps the append-only operation log: one line per
// discrete action, written to a per-day file under the repository's
// .logs directory. The journal is the durable record used to reconstruct
// what happened if a run is interrupted; diagnostic logging to the
// terminal is separate (pkg/logging).
package journal

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/RomanAverin/dotfiles/pkg/errors"
)

const (
	filePrefix = "stow-manager-"
	dayLayout  = "20060102"
	timeLayout = "2006-01-02 15:04:05"
)

// Journal appends structured action records to the current day's file.
type Journal struct {
	dir    string
	now    func() time.Time
	file   *os.File
	logger zerolog.Logger
}

// Open creates (if needed) the log directory and opens today's file in
// append mode.
func Open(dir string) (*Journal, error) {
	j := &Journal{dir: dir, now: time.Now}
	if err := j.open(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) open() error {
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot create log directory %s", j.dir)
	}
	path := filepath.Join(j.dir, filePrefix+j.now().Format(dayLayout)+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open log file %s", path)
	}

	j.file = file
	writer := zerolog.ConsoleWriter{
		Out:        file,
		NoColor:    true,
		TimeFormat: timeLayout,
	}
	j.logger = zerolog.New(writer).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	return nil
}

// Path returns the current day's log file path.
func (j *Journal) Path() string {
	return filepath.Join(j.dir, filePrefix+j.now().Format(dayLayout)+".log")
}

// Record appends one action line.
func (j *Journal) Record(event string, fields map[string]string) {
	e := j.logger.Info()
	for k, v := range fields {
		e = e.Str(k, v)
	}
	e.Msg(event)
}

// RecordError appends one failed-action line.
func (j *Journal) RecordError(event string, err error, fields map[string]string) {
	e := j.logger.Error().Err(err)
	for k, v := range fields {
		e = e.Str(k, v)
	}
	e.Msg(event)
}

// Close releases the underlying file.
func (j *Journal) Close() error {
	if j.file == nil {
		return nil
	}
	return j.file.Close()
}
