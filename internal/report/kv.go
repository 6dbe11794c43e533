package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fystack/keno-odds/pkg/common/constant"
	"github.com/fystack/keno-odds/pkg/infra"
	"github.com/fystack/keno-odds/pkg/kvstore"
)

// KVSink stores the report under report/<id> and points latest at it.
type KVSink struct {
	store infra.KVStore
}

func NewKVSink(store infra.KVStore) *KVSink {
	return &KVSink{store: store}
}

func (s *KVSink) Name() string { return "kvstore:" + s.store.GetName() }

func (s *KVSink) Write(_ context.Context, r *Report) error {
	if err := s.store.SetAny(constant.ReportKeyPrefix+r.ID, r); err != nil {
		return fmt.Errorf("store report %s: %w", r.ID, err)
	}
	if err := s.store.Set(constant.LatestReportKey, r.ID); err != nil {
		return fmt.Errorf("store latest report: %w", err)
	}
	return nil
}

// LoadLatest reads the most recently stored report.
func LoadLatest(store infra.KVStore) (*Report, error) {
	id, err := latestID(store)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w at %s", ErrNoReport, constant.LatestReportKey)
	}
	return Load(store, id)
}

// Load reads the report stored under id.
func Load(store infra.KVStore, id string) (*Report, error) {
	key := constant.ReportKeyPrefix + id
	var r Report
	found, err := store.GetAny(key, &r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !found {
		return nil, fmt.Errorf("%w at %s", ErrNoReport, key)
	}
	return &r, nil
}

// IDs lists the ids of all stored reports.
func IDs(store infra.KVStore) ([]string, error) {
	pairs, err := store.List(constant.ReportKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	ids := make([]string, 0, len(pairs))
	for _, p := range pairs {
		ids = append(ids, strings.TrimPrefix(p.Key, constant.ReportKeyPrefix))
	}
	return ids, nil
}

// Delete removes the report stored under id. Deleting the latest report
// clears the latest pointer.
func Delete(store infra.KVStore, id string) error {
	if _, err := Load(store, id); err != nil {
		return err
	}
	if err := store.Delete(constant.ReportKeyPrefix + id); err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}

	latest, err := latestID(store)
	if err != nil {
		return err
	}
	if latest == id {
		if err := store.Delete(constant.LatestReportKey); err != nil {
			return fmt.Errorf("clear latest report: %w", err)
		}
	}
	return nil
}

// latestID returns "" when nothing has been stored yet.
func latestID(store infra.KVStore) (string, error) {
	id, err := store.Get(constant.LatestReportKey)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", constant.LatestReportKey, err)
	}
	return id, nil
}
