package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"annexops/internal/completeness"
	"annexops/internal/diff"
	"annexops/internal/manifest"
	dErrors "annexops/pkg/domain-errors"
)

// Bundle file names. Auditors script against these, so they are part of the
// export contract.
const (
	fileDocument     = "AnnexIV.html"
	fileManifest     = "SystemManifest.json"
	fileEvidenceJSON = "EvidenceIndex.json"
	fileEvidenceCSV  = "EvidenceIndex.csv"
	fileCompleteness = "CompletenessReport.json"
	fileDiff         = "DiffReport.json"
)

type bundleInput struct {
	manifest manifest.Manifest
	report   completeness.Report
	diff     *diff.Result
}

// buildBundle renders every artifact and assembles the ZIP. Artifact
// rendering fans out; the archive itself is written sequentially because zip
// writers are single-threaded.
func buildBundle(ctx context.Context, in bundleInput) ([]byte, error) {
	var (
		document     []byte
		manifestJSON []byte
		evidenceJSON []byte
		evidenceCSV  []byte
		reportJSON   []byte
		diffJSON     []byte
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		document, err = renderDocument(in.manifest, in.report)
		return err
	})
	g.Go(func() error {
		var err error
		manifestJSON, err = marshalArtifact(in.manifest)
		return err
	})
	g.Go(func() error {
		var err error
		evidenceJSON, err = marshalArtifact(in.manifest.EvidenceIndex)
		return err
	})
	g.Go(func() error {
		var err error
		evidenceCSV, err = renderEvidenceCSV(in.manifest.EvidenceIndex)
		return err
	})
	g.Go(func() error {
		var err error
		reportJSON, err = marshalArtifact(in.report)
		return err
	})
	if in.diff != nil {
		g.Go(func() error {
			var err error
			diffJSON, err = marshalArtifact(in.diff)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct {
		name string
		data []byte
	}{
		{fileDocument, document},
		{fileManifest, manifestJSON},
		{fileEvidenceJSON, evidenceJSON},
		{fileEvidenceCSV, evidenceCSV},
		{fileCompleteness, reportJSON},
	}
	if in.diff != nil {
		files = append(files, struct {
			name string
			data []byte
		}{fileDiff, diffJSON})
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeComputation, "create bundle entry "+f.name)
		}
		if _, err := w.Write(f.data); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeComputation, "write bundle entry "+f.name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeComputation, "finalize bundle")
	}
	return buf.Bytes(), nil
}

func marshalArtifact(v any) ([]byte, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeComputation, "marshal bundle artifact")
	}
	return raw, nil
}

func renderEvidenceCSV(index []manifest.EvidenceIndexItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "title", "type", "checksum"}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeComputation, "write evidence CSV header")
	}
	for _, item := range index {
		if err := w.Write([]string{item.ID, item.Title, item.Type, item.Checksum}); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeComputation, "write evidence CSV row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeComputation, "flush evidence CSV")
	}
	return buf.Bytes(), nil
}
