package corpus

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/haivivi/speechbatch/pkg/errs"
)

// FromFiles builds a corpus of file references from parallel path lists.
func FromFiles(audioPaths, labelPaths []string) (*Corpus, error) {
	if len(audioPaths) != len(labelPaths) {
		return nil, errs.Config("corpus: %d audio files but %d transcript files", len(audioPaths), len(labelPaths))
	}
	audios := make([]Audio, len(audioPaths))
	labels := make([]Label, len(labelPaths))
	for i := range audioPaths {
		audios[i] = Audio{Path: audioPaths[i]}
		labels[i] = Label{Path: labelPaths[i]}
	}
	return New(audios, labels)
}

// ScanDir pairs every x.wav below dir with the transcript x.txt next to
// it. Pairs are ordered by audio path. A wav without a transcript is an
// error.
func ScanDir(dir string) (*Corpus, error) {
	var wavs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".wav") {
			wavs = append(wavs, path)
		}
		return nil
	})
	if err != nil {
		return nil, errs.IO(err, "scan %s", dir)
	}
	sort.Strings(wavs)

	txts := make([]string, len(wavs))
	for i, w := range wavs {
		txt := strings.TrimSuffix(w, filepath.Ext(w)) + ".txt"
		if _, err := os.Stat(txt); err != nil {
			return nil, errs.IO(err, "transcript for %s", w)
		}
		txts[i] = txt
	}
	return FromFiles(wavs, txts)
}

// ScanLibriSpeech reads a LibriSpeech-style tree:
//
//	root/<speaker>/<chapter>/<speaker>-<chapter>.trans.txt
//	root/<speaker>/<chapter>/<utterance-id>.wav
//
// Each transcript line is "<utterance-id> <TEXT>". Audio is expected as
// WAV next to the transcript file. Utterances are ordered by id.
func ScanLibriSpeech(root string) (*Corpus, error) {
	var transcripts []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".trans.txt") {
			transcripts = append(transcripts, path)
		}
		return nil
	})
	if err != nil {
		return nil, errs.IO(err, "scan %s", root)
	}
	sort.Strings(transcripts)

	var audios []Audio
	var labels []Label
	for _, tr := range transcripts {
		a, l, err := readTransFile(tr)
		if err != nil {
			return nil, err
		}
		audios = append(audios, a...)
		labels = append(labels, l...)
	}
	return New(audios, labels)
}

func readTransFile(path string) ([]Audio, []Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errs.IO(err, "open %s", path)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var audios []Audio
	var labels []Label
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		id, transcript, ok := strings.Cut(text, " ")
		if !ok {
			return nil, nil, errs.Input("%s:%d: missing transcript after utterance id", path, line)
		}
		wav := filepath.Join(dir, id+".wav")
		if _, err := os.Stat(wav); err != nil {
			return nil, nil, errs.IO(err, "%s:%d: audio for %s", path, line, id)
		}
		audios = append(audios, Audio{Path: wav})
		labels = append(labels, Label{Text: strings.TrimSpace(transcript)})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errs.IO(err, "read %s", path)
	}
	return audios, labels, nil
}
