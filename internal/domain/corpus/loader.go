package corpus

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

// LoadDataset reads a YAML corpus file.  Records missing their key fields
// are dropped with a warning rather than failing the whole load.
func LoadDataset(path string, logger logging.Logger) (*Dataset, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeCorpusNotFound, "corpus file not found").
				WithDetail(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeCorpusLoadFailed, "failed to read corpus file").
			WithDetail(path)
	}

	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusParseError, "corpus file is not valid YAML").
			WithDetail(path)
	}

	statutes := ds.Statutes[:0]
	for _, s := range ds.Statutes {
		if !s.Valid() {
			logger.Warn("dropping incomplete statute record", logging.String("number", s.Number))
			continue
		}
		if s.Category == "" {
			s.Category = CategoryPatentLaw
		}
		statutes = append(statutes, s)
	}
	ds.Statutes = statutes

	precedents := ds.Precedents[:0]
	for _, p := range ds.Precedents {
		if !p.Valid() {
			logger.Warn("dropping incomplete precedent record", logging.String("case_number", p.CaseNumber))
			continue
		}
		precedents = append(precedents, p)
	}
	ds.Precedents = precedents

	logger.Info("corpus dataset loaded",
		logging.String("path", path),
		logging.Int("statutes", len(ds.Statutes)),
		logging.Int("precedents", len(ds.Precedents)))
	return &ds, nil
}
