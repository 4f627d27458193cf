package normalize

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/domain"
	"github.com/remintlab/collection-harvester/internal/downloader"
	"github.com/remintlab/collection-harvester/internal/logger"
	"github.com/remintlab/collection-harvester/internal/providers/placeholder"
	"github.com/remintlab/collection-harvester/internal/retry"
)

// Options configures one normalization pass
type Options struct {
	// SubstituteMedia replaces each record's media with an item drawn from
	// the placeholder stream instead of copying the harvested original
	SubstituteMedia bool

	// MediaSource is the search term selecting the placeholder stream
	MediaSource string

	// ClassifyNames injects a classification trait based on the name pattern
	ClassifyNames bool

	// InjectMintDate appends the human-readable provenance date to the
	// description and as an attribute
	InjectMintDate bool

	// SplitLayout writes assets/ and metadata/ subdirectories instead of
	// the legacy flat layout
	SplitLayout bool

	// PlaceholderPageLimit is the search page size for the media stream
	PlaceholderPageLimit int
}

// Normalizer turns a harvested corpus into a sequentially numbered,
// self-contained asset set. The normalization run is the sole writer of
// the output directory.
type Normalizer struct {
	fs     adapter.FileSystem
	json   adapter.JSON
	dl     downloader.Downloader
	media  placeholder.Client
	policy retry.Policy
}

// NewNormalizer creates a normalizer. media may be nil when substitution
// is never requested.
func NewNormalizer(fs adapter.FileSystem, json adapter.JSON, dl downloader.Downloader, media placeholder.Client, policy retry.Policy) *Normalizer {
	return &Normalizer{
		fs:     fs,
		json:   json,
		dl:     dl,
		media:  media,
		policy: policy,
	}
}

// corpusRecord is one harvested record staged for renumbering
type corpusRecord struct {
	fileName   string
	record     domain.HarvestedRecord
	priorID    *int
	provenance *time.Time
}

// harvestedFile decodes a harvest record along with the sequential id a
// prior normalization pass may have assigned
type harvestedFile struct {
	domain.HarvestedRecord
	ID *int `json:"id"`
}

// Normalize reads every record in inputDir, orders the corpus by provenance
// timestamp, renumbers it 1..N and writes the renumbered records plus their
// media to outputDir. Metadata is rewritten on every run; only the media
// fetch is skip-guarded, which makes an interrupted substitution run
// resumable and idempotent.
func (n *Normalizer) Normalize(ctx context.Context, inputDir, outputDir string, opts Options) error {
	records, err := n.loadCorpus(inputDir)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no records found in %s", inputDir)
	}

	orderCorpus(records)

	assetsDir, metadataDir := layout(outputDir, opts.SplitLayout)
	for _, dir := range []string{assetsDir, metadataDir} {
		if err := n.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var stream *placeholder.Stream
	if opts.SubstituteMedia {
		stream = placeholder.NewStream(n.media, opts.MediaSource, opts.PlaceholderPageLimit)
	}

	logger.Info("Starting normalization",
		zap.String("input", inputDir),
		zap.String("output", outputDir),
		zap.Int("records", len(records)),
		zap.Bool("substitute_media", opts.SubstituteMedia),
	)

	for i, rec := range records {
		tokenID := i + 1

		imageName, err := n.resolveMedia(ctx, rec, tokenID, inputDir, assetsDir, stream)
		if err != nil {
			// MediaExhausted is fatal: falling back to original media would
			// silently produce a mixed-provenance corpus. Files already
			// written stay behind so a re-run can resume.
			return fmt.Errorf("media resolution for token %d failed: %w", tokenID, err)
		}

		normalized := n.buildRecord(rec, tokenID, imageName, opts)

		data, err := n.json.MarshalIndent(normalized, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal token %d: %w", tokenID, err)
		}
		if err := n.writeAtomic(filepath.Join(metadataDir, fmt.Sprintf("%d.json", tokenID)), data); err != nil {
			return fmt.Errorf("failed to write token %d: %w", tokenID, err)
		}

		logger.Debug("record normalized",
			zap.Int("token_id", tokenID),
			zap.String("source", rec.fileName),
		)
	}

	logger.Info("Normalization finished", zap.Int("records", len(records)))
	return nil
}

// loadCorpus parses every JSON record in dir, in file-name order
func (n *Normalizer) loadCorpus(dir string) ([]*corpusRecord, error) {
	entries, err := n.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var records []*corpusRecord
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := n.fs.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		var file harvestedFile
		if err := n.json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}

		rec := &corpusRecord{
			fileName: entry.Name(),
			record:   file.HarvestedRecord,
			priorID:  file.ID,
		}
		if ts, ok := file.ProvenanceTimestamp(); ok {
			rec.provenance = &ts
		}
		records = append(records, rec)
	}

	return records, nil
}

// orderCorpus sorts the corpus into canonical order: by prior sequential id
// when re-normalizing, otherwise ascending provenance timestamp. The sort is
// stable over the file-name enumeration order, which pins the tie-break;
// records with no timestamp at all sort last, keeping their file order.
func orderCorpus(records []*corpusRecord) {
	renumbering := true
	for _, rec := range records {
		if rec.priorID == nil {
			renumbering = false
			break
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if renumbering {
			return *a.priorID < *b.priorID
		}
		if a.provenance == nil || b.provenance == nil {
			return a.provenance != nil && b.provenance == nil
		}
		return a.provenance.Before(*b.provenance)
	})
}

// resolveMedia produces the output media file for one token and returns its
// file name. In substitution mode a draw is skipped entirely when the output
// file already exists.
func (n *Normalizer) resolveMedia(ctx context.Context, rec *corpusRecord, tokenID int, inputDir, assetsDir string, stream *placeholder.Stream) (string, error) {
	if stream != nil {
		return n.substituteMedia(ctx, tokenID, assetsDir, stream)
	}
	return n.copyMedia(rec, tokenID, inputDir, assetsDir)
}

// substituteMedia draws the next placeholder item and writes it as the
// token's media, unless the file is already present from an earlier run
func (n *Normalizer) substituteMedia(ctx context.Context, tokenID int, assetsDir string, stream *placeholder.Stream) (string, error) {
	imageName := fmt.Sprintf("%d%s", tokenID, placeholder.AcceptedExtension)
	outPath := filepath.Join(assetsDir, imageName)

	if _, err := n.fs.Stat(outPath); err == nil {
		logger.Debug("media already present, skipping download", zap.Int("token_id", tokenID))
		return imageName, nil
	}

	item, err := stream.Next(ctx)
	if err != nil {
		return "", err
	}

	result, err := retry.Do(ctx, n.policy, "download placeholder media", func(ctx context.Context) (*downloader.DownloadResult, error) {
		res, err := n.dl.Download(ctx, item.URL)
		if err != nil {
			return nil, retry.ClassifyStatus(err)
		}
		return res, nil
	})
	if err != nil {
		return "", err
	}

	data, err := result.Bytes()
	if err != nil {
		return "", err
	}
	if err := n.writeAtomic(outPath, data); err != nil {
		return "", err
	}

	return imageName, nil
}

// copyMedia copies the harvested original media into the output set,
// renamed to the token's sequential id
func (n *Normalizer) copyMedia(rec *corpusRecord, tokenID int, inputDir, assetsDir string) (string, error) {
	if rec.record.ImagePath == "" {
		return "", fmt.Errorf("record %s has no media file", rec.fileName)
	}

	data, err := n.fs.ReadFile(filepath.Join(inputDir, rec.record.ImagePath))
	if err != nil {
		return "", fmt.Errorf("failed to read media for %s: %w", rec.fileName, err)
	}

	imageName := fmt.Sprintf("%d%s", tokenID, filepath.Ext(rec.record.ImagePath))
	if err := n.writeAtomic(filepath.Join(assetsDir, imageName), data); err != nil {
		return "", err
	}

	return imageName, nil
}

// buildRecord assembles the renumbered record with derived attributes and
// the rewritten description
func (n *Normalizer) buildRecord(rec *corpusRecord, tokenID int, imageName string, opts Options) *domain.NormalizedRecord {
	attributes := append([]domain.Trait{}, rec.record.Attributes...)
	attributes = append(attributes, DeriveAttributes(rec.record.Name, rec.provenance, DeriveOptions{
		ClassifyNames:  opts.ClassifyNames,
		InjectMintDate: opts.InjectMintDate,
	})...)

	description := rec.record.Description
	if opts.InjectMintDate {
		if sentence := MintSentence(rec.provenance); sentence != "" {
			description = strings.TrimSpace(description + " " + sentence)
		}
	}

	var originalDate *string
	if rec.provenance != nil {
		formatted := rec.provenance.Format(mintDateLayout)
		originalDate = &formatted
	}

	return &domain.NormalizedRecord{
		ID:                   tokenID,
		Name:                 rec.record.Name,
		Description:          description,
		ImagePath:            imageName,
		OriginalCreationDate: originalDate,
		Attributes:           attributes,
		Owners:               rec.record.Owners,
		Events:               rec.record.Events,
	}
}

// layout resolves the output directory pair for the chosen layout
func layout(outputDir string, split bool) (assetsDir, metadataDir string) {
	if split {
		return filepath.Join(outputDir, "assets"), filepath.Join(outputDir, "metadata")
	}
	return outputDir, outputDir
}

// writeAtomic writes data to a unique temp file and renames it into place
func (n *Normalizer) writeAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := n.fs.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := n.fs.Rename(tmp, path); err != nil {
		_ = n.fs.Remove(tmp)
		return err
	}
	return nil
}

// IsMediaExhausted reports whether err aborted the run because the
// placeholder stream ran out of eligible items
func IsMediaExhausted(err error) bool {
	return errors.Is(err, placeholder.ErrMediaExhausted)
}
