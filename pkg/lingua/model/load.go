package model

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/cognicore/lingua/pkg/lingua/internalerr"
	"github.com/cognicore/lingua/pkg/lingua/langid"
	"github.com/cognicore/lingua/pkg/lingua/lemma"
	"github.com/cognicore/lingua/pkg/lingua/lexicon"
	"github.com/cognicore/lingua/pkg/lingua/ner"
	"github.com/cognicore/lingua/pkg/lingua/postag"
	"github.com/cognicore/lingua/pkg/lingua/tokenize"
)

// Model files inside a language directory. Only the profile is required.
const (
	ProfileFile   = "profile.txt"
	LexiconFile   = "lexicon.yaml"
	CorpusFile    = "pos.txt"
	LemmaFile     = "lemma.yaml"
	GazetteerFile = "gazetteer.yaml"
	TriggersFile  = "ner.yaml"
)

// Load reads models from dir, one subdirectory per language code. An empty
// languages list loads every subdirectory.
func Load(languages []string, dir string, opts ...Option) (*Bundle, error) {
	return LoadFS(os.DirFS(dir), languages, opts...)
}

// LoadFS is Load over any file system. Errors are *internalerr.ModelLoadError.
func LoadFS(fsys fs.FS, languages []string, opts ...Option) (*Bundle, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	start := time.Now()

	codes, err := resolveCodes(fsys, languages)
	if err != nil {
		return nil, err
	}

	b := &Bundle{languages: make(map[string]*Language, len(codes)), codes: codes}
	gazData := make(map[string][]byte)
	var (
		profiles []*langid.Profile
		models   []*postag.Model
		triggers ner.Triggers
	)
	ruleSets := make(map[string]*lemma.RuleSet)

	for _, code := range codes {
		lang, gaz, err := loadLanguage(fsys, code, o.profileSize)
		if err != nil {
			return nil, err
		}
		b.languages[code] = lang
		profiles = append(profiles, lang.Profile)
		if lang.POS != nil {
			models = append(models, lang.POS)
		}
		if lang.Lemma != nil {
			ruleSets[code] = lang.Lemma
		}
		triggers = triggers.Merge(lang.Triggers)
		if gaz != nil {
			gazData[code] = gaz
		}
		o.logger.Debug("language loaded",
			zap.String("language", code),
			zap.Int("profile_ngrams", lang.Profile.Size()),
			zap.Int("lexicon_words", lang.Lexicon.Stats().Words),
			zap.Bool("pos_model", lang.POS != nil),
			zap.Bool("lemma_rules", lang.Lemma != nil))
	}

	tokOpts := o.tokenizer
	tokOpts.Abbreviations = append(append([]string(nil), tokOpts.Abbreviations...), triggers.Abbreviations...)
	for _, w := range append(append([]string(nil), triggers.Titles...), triggers.OrgSuffixes...) {
		if strings.HasSuffix(w, ".") {
			tokOpts.Abbreviations = append(tokOpts.Abbreviations, w)
		}
	}
	b.tokenizer = tokenize.NewTokenizer(tokOpts)

	b.gazetteer = ner.NewGazetteer(b.tokenizer)
	for _, code := range codes {
		data, ok := gazData[code]
		if !ok {
			continue
		}
		if err := b.gazetteer.LoadYAML(data); err != nil {
			return nil, internalerr.NewModelLoadError(code, path.Join(code, GazetteerFile), err)
		}
	}

	b.identifier = langid.NewIdentifier(profiles, o.langid)
	b.tagger = postag.NewTagger(models...)
	b.lemmatizer = lemma.New(ruleSets)
	b.recognizer = ner.NewRecognizer(b.gazetteer, triggers)

	o.logger.Info("models loaded",
		zap.Strings("languages", codes),
		zap.Int("gazetteer_entries", b.gazetteer.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return b, nil
}

// resolveCodes canonicalizes the requested codes, or lists the language
// directories of fsys when none are requested.
func resolveCodes(fsys fs.FS, languages []string) ([]string, error) {
	if len(languages) == 0 {
		entries, err := fs.ReadDir(fsys, ".")
		if err != nil {
			return nil, internalerr.NewModelLoadError("", ".", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				languages = append(languages, e.Name())
			}
		}
		if len(languages) == 0 {
			return nil, internalerr.NewModelLoadError("", ".", errors.New("no language directories"))
		}
	}

	seen := make(map[string]struct{}, len(languages))
	codes := make([]string, 0, len(languages))
	for _, raw := range languages {
		code, err := Canonical(raw)
		if err != nil {
			return nil, internalerr.NewModelLoadError(raw, "", err)
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

// Canonical returns the base language subtag of a BCP 47 code:
// "EN", "en-US" and "en_GB" all become "en".
func Canonical(code string) (string, error) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", fmt.Errorf("invalid language code %q", code)
	}
	return base.String(), nil
}

// loadLanguage reads one language directory. The raw gazetteer is returned
// separately because it can only be tokenized once every language's
// abbreviations are known.
func loadLanguage(fsys fs.FS, code string, profileSize int) (*Language, []byte, error) {
	lang := &Language{Code: code}
	fail := func(file string, err error) (*Language, []byte, error) {
		return nil, nil, internalerr.NewModelLoadError(code, path.Join(code, file), err)
	}

	sample, err := fs.ReadFile(fsys, path.Join(code, ProfileFile))
	if err != nil {
		return fail(ProfileFile, err)
	}
	if len(bytes.TrimSpace(sample)) == 0 {
		return fail(ProfileFile, errors.New("empty profile sample"))
	}
	lang.Profile = langid.BuildProfile(code, string(sample), profileSize)

	lang.Lexicon = lexicon.New()
	if data, ok, err := readOptional(fsys, code, LexiconFile); err != nil {
		return fail(LexiconFile, err)
	} else if ok {
		if lang.Lexicon, err = lexicon.Parse(data); err != nil {
			return fail(LexiconFile, err)
		}
	}

	var corpus []postag.Sentence
	if data, ok, err := readOptional(fsys, code, CorpusFile); err != nil {
		return fail(CorpusFile, err)
	} else if ok {
		if corpus, err = postag.ParseCorpus(bytes.NewReader(data)); err != nil {
			return fail(CorpusFile, err)
		}
	}
	if len(corpus) > 0 || lang.Lexicon.Stats().Words > 0 {
		lang.POS = postag.Train(code, corpus, lang.Lexicon)
	}

	if data, ok, err := readOptional(fsys, code, LemmaFile); err != nil {
		return fail(LemmaFile, err)
	} else if ok {
		if lang.Lemma, err = lemma.ParseRuleSet(data, lang.Lexicon); err != nil {
			return fail(LemmaFile, err)
		}
	}

	if data, ok, err := readOptional(fsys, code, TriggersFile); err != nil {
		return fail(TriggersFile, err)
	} else if ok {
		if lang.Triggers, err = ner.ParseTriggers(data); err != nil {
			return fail(TriggersFile, err)
		}
	}

	gaz, _, err := readOptional(fsys, code, GazetteerFile)
	if err != nil {
		return fail(GazetteerFile, err)
	}
	return lang, gaz, nil
}

// readOptional reads a model file that may be absent.
func readOptional(fsys fs.FS, code, file string) ([]byte, bool, error) {
	data, err := fs.ReadFile(fsys, path.Join(code, file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
