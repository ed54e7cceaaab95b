package infrastructure

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/internal/domain"
)

var gzipMagic = []byte{0x1f, 0x8b}

// errInvalidUTF8 is wrapped by ExtractionError for undecodable lines
var errInvalidUTF8 = errors.New("invalid UTF-8")

// TarExtractor opens tar and tar.gz dump archives as single-pass member iterators
type TarExtractor struct {
	mode    domain.ExtractMode
	tempDir string
	logger  *zap.Logger
}

// NewTarExtractor creates an extractor. An empty temp dir means os.TempDir().
func NewTarExtractor(config *domain.ExtractConfig, logger *zap.Logger) *TarExtractor {
	mode := domain.ExtractMode(config.Mode)
	if !domain.ValidateExtractMode(mode) {
		mode = domain.ModeLines
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TarExtractor{mode: mode, tempDir: config.TempDir, logger: logger}
}

// Mode returns the content mode members are delivered in
func (e *TarExtractor) Mode() domain.ExtractMode {
	return e.mode
}

// Open opens the archive of a packed dump. The caller must Close the iterator.
func (e *TarExtractor) Open(packed *domain.PackedDump) (*MemberIterator, error) {
	if e.tempDir != "" && e.mode == domain.ModeLines {
		if err := os.MkdirAll(e.tempDir, 0755); err != nil {
			return nil, &domain.ExtractionError{Archive: packed.Path, Err: fmt.Errorf("failed to create temp directory: %w", err)}
		}
	}

	file, err := os.Open(packed.Path)
	if err != nil {
		return nil, &domain.ExtractionError{Archive: packed.Path, Err: err}
	}

	it := &MemberIterator{
		archive: packed.Path,
		mode:    e.mode,
		tempDir: e.tempDir,
		file:    file,
		logger:  e.logger,
	}

	br := bufio.NewReaderSize(file, 1<<20)
	magic, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		file.Close()
		return nil, &domain.ExtractionError{Archive: packed.Path, Err: err}
	}

	var src io.Reader = br
	if bytes.Equal(magic, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, &domain.ExtractionError{Archive: packed.Path, Err: fmt.Errorf("failed to open gzip stream: %w", err)}
		}
		it.gz = gz
		src = gz
	}
	it.tr = tar.NewReader(src)

	return it, nil
}

// Member is one regular file of an archive.
// In bytes mode Data holds the content; in lines mode Lines streams it.
type Member struct {
	Name  string
	Size  int64
	Data  []byte
	Lines *LineScanner
}

// MemberIterator walks archive members in order. It is single-pass: reading the
// archive again requires a new Open.
type MemberIterator struct {
	archive string
	mode    domain.ExtractMode
	tempDir string
	file    *os.File
	gz      *gzip.Reader
	tr      *tar.Reader
	logger  *zap.Logger

	current  *Member
	lastName string
	count    int
	err      error
	closed   bool
}

// Next advances to the next regular member, releasing the previous member's temp file
func (it *MemberIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	it.releaseCurrent()

	for {
		hdr, err := it.tr.Next()
		if err == io.EOF {
			it.verifyTrailer()
			return false
		}
		if err != nil {
			it.err = &domain.ExtractionError{Archive: it.archive, Err: it.headerError(err)}
			return false
		}
		if !hdr.FileInfo().Mode().IsRegular() {
			continue
		}

		member, err := it.load(hdr)
		if err != nil {
			it.err = err
			return false
		}

		it.current = member
		it.lastName = hdr.Name
		it.count++
		return true
	}
}

// verifyTrailer reads the gzip stream past the tar end-of-archive blocks.
// compress/gzip checks the CRC32 and size trailer only on reaching EOF.
func (it *MemberIterator) verifyTrailer() {
	if it.gz == nil {
		return
	}
	if _, err := io.Copy(io.Discard, it.gz); err != nil {
		it.err = &domain.ExtractionError{Archive: it.archive, Err: fmt.Errorf("failed to verify gzip trailer: %w", err)}
	}
}

// headerError names the last good member when the next header is unreadable
func (it *MemberIterator) headerError(err error) error {
	if it.lastName == "" {
		return fmt.Errorf("failed to read first member header: %w", err)
	}
	return fmt.Errorf("failed to read member header after %q: %w", it.lastName, err)
}

// load reads a member according to the iterator mode
func (it *MemberIterator) load(hdr *tar.Header) (*Member, error) {
	member := &Member{Name: hdr.Name, Size: hdr.Size}

	if it.mode == domain.ModeBytes {
		data, err := io.ReadAll(it.tr)
		if err != nil {
			return nil, &domain.ExtractionError{Archive: it.archive, Member: hdr.Name, Err: err}
		}
		member.Data = data
		return member, nil
	}

	tmp, err := os.CreateTemp(it.tempDir, "wikidump-member-*")
	if err != nil {
		return nil, &domain.ExtractionError{Archive: it.archive, Member: hdr.Name, Err: fmt.Errorf("failed to create temp file: %w", err)}
	}
	if _, err := io.Copy(tmp, it.tr); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, &domain.ExtractionError{Archive: it.archive, Member: hdr.Name, Err: err}
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, &domain.ExtractionError{Archive: it.archive, Member: hdr.Name, Err: err}
	}

	it.logger.Debug("Extracted member to temp file",
		zap.String("member", hdr.Name),
		zap.String("temp", tmp.Name()))

	member.Lines = &LineScanner{
		archive: it.archive,
		member:  hdr.Name,
		file:    tmp,
		path:    tmp.Name(),
		reader:  bufio.NewReaderSize(tmp, 1<<20),
		fail:    func(err error) { it.err = err },
	}
	return member, nil
}

// Member returns the current member
func (it *MemberIterator) Member() *Member {
	return it.current
}

// Count returns how many members have been yielded so far
func (it *MemberIterator) Count() int {
	return it.count
}

// Err returns the first error met while iterating
func (it *MemberIterator) Err() error {
	return it.err
}

func (it *MemberIterator) releaseCurrent() {
	if it.current != nil && it.current.Lines != nil {
		it.current.Lines.release()
	}
	it.current = nil
}

// Close releases the current member's temp file and the archive. It is safe to call twice.
func (it *MemberIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	it.releaseCurrent()

	var firstErr error
	if it.gz != nil {
		if err := it.gz.Close(); err != nil {
			firstErr = err
		}
	}
	if err := it.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// LineScanner yields the UTF-8 lines of one member, without their line terminator.
// Its temp file is removed as soon as the last line has been read.
type LineScanner struct {
	archive string
	member  string
	file    *os.File
	path    string
	reader  *bufio.Reader
	fail    func(error)

	line   string
	lineNo int
	err    error
	done   bool
}

// Scan advances to the next line
func (s *LineScanner) Scan() bool {
	if s.done {
		return false
	}

	raw, err := s.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		s.setErr(&domain.ExtractionError{Archive: s.archive, Member: s.member, Line: s.lineNo + 1, Err: err})
		return false
	}
	if raw == "" {
		s.release()
		return false
	}

	s.lineNo++
	line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
	if !utf8.ValidString(line) {
		s.setErr(&domain.ExtractionError{Archive: s.archive, Member: s.member, Line: s.lineNo, Err: errInvalidUTF8})
		return false
	}
	s.line = line

	// a final line without terminator is the end of the member
	if err == io.EOF {
		s.release()
	}
	return true
}

// Text returns the current line
func (s *LineScanner) Text() string {
	return s.line
}

// Line returns the 1-based number of the current line
func (s *LineScanner) Line() int {
	return s.lineNo
}

// Err returns the error that stopped scanning, if any
func (s *LineScanner) Err() error {
	return s.err
}

// TempPath returns the on-disk copy backing the scanner
func (s *LineScanner) TempPath() string {
	return s.path
}

func (s *LineScanner) setErr(err error) {
	s.err = err
	if s.fail != nil {
		s.fail(err)
	}
	s.release()
}

func (s *LineScanner) release() {
	s.done = true
	if s.file == nil {
		return
	}
	s.file.Close()
	os.Remove(s.path)
	s.file = nil
}
