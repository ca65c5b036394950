package corpus

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/speechbatch/pkg/errs"
)

// Blob name suffixes. The label suffix keeps its historical spelling so
// existing stores stay readable.
const (
	AudioSuffix = "_audios"
	LabelSuffix = "_labeles"
)

// Save writes c to store as the two blobs name+AudioSuffix and
// name+LabelSuffix.
func Save(ctx context.Context, store BlobStore, name string, c *Corpus) error {
	if c.Len() != len(c.Labels) {
		return errs.Config("corpus: %d audios but %d labels", c.Len(), len(c.Labels))
	}
	if err := writeBlob(ctx, store, name+AudioSuffix, c.Audios); err != nil {
		return err
	}
	return writeBlob(ctx, store, name+LabelSuffix, c.Labels)
}

// Load reads the corpus saved under name. It returns either the complete
// corpus or an error wrapping errs.ErrIO; a missing blob also matches
// os.ErrNotExist.
func Load(ctx context.Context, store BlobStore, name string) (*Corpus, error) {
	var audios []Audio
	if err := readBlob(ctx, store, name+AudioSuffix, &audios); err != nil {
		return nil, err
	}
	var labels []Label
	if err := readBlob(ctx, store, name+LabelSuffix, &labels); err != nil {
		return nil, err
	}
	if len(audios) != len(labels) {
		return nil, errs.IO(nil, "corpus %s: %d audios but %d labels", name, len(audios), len(labels))
	}
	return &Corpus{Audios: audios, Labels: labels}, nil
}

// Exists reports whether both blobs of name are present.
func Exists(ctx context.Context, store BlobStore, name string) (bool, error) {
	for _, suffix := range []string{AudioSuffix, LabelSuffix} {
		ok, err := store.Exists(ctx, name+suffix)
		if err != nil {
			return false, errs.IO(err, "stat %s", name+suffix)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Remove deletes both blobs of name.
func Remove(ctx context.Context, store BlobStore, name string) error {
	var errList []error
	for _, suffix := range []string{AudioSuffix, LabelSuffix} {
		if err := store.Delete(ctx, name+suffix); err != nil {
			errList = append(errList, errs.IO(err, "delete %s", name+suffix))
		}
	}
	return errors.Join(errList...)
}

func writeBlob(ctx context.Context, store BlobStore, blob string, v any) error {
	w, err := store.Write(ctx, blob)
	if err != nil {
		return errs.IO(err, "open %s", blob)
	}
	bw := bufio.NewWriter(w)
	if err := msgpack.NewEncoder(bw).Encode(v); err != nil {
		w.Close()
		return errs.IO(err, "encode %s", blob)
	}
	if err := bw.Flush(); err != nil {
		w.Close()
		return errs.IO(err, "write %s", blob)
	}
	if err := w.Close(); err != nil {
		return errs.IO(err, "commit %s", blob)
	}
	return nil
}

func readBlob(ctx context.Context, store BlobStore, blob string, v any) error {
	r, err := store.Read(ctx, blob)
	if err != nil {
		return errs.IO(err, "open %s", blob)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return errs.IO(err, "read %s", blob)
	}
	br := bytes.NewReader(data)
	if err := msgpack.NewDecoder(br).Decode(v); err != nil {
		return errs.IO(err, "decode %s", blob)
	}
	if br.Len() != 0 {
		return errs.IO(nil, "decode %s: %d bytes of trailing data", blob, br.Len())
	}
	return nil
}
