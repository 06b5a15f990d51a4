package webhookpubsub

import (
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

// webhookStore persists the webhooks indexed by topic.
type webhookStore struct {
	store *badgerhold.Store
}

func newWebhookStore(datadir string, logger badger.Logger) (*webhookStore, error) {
	var dir string
	if len(datadir) > 0 {
		dir = filepath.Join(datadir, "webhooks")
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = logger
	if len(dir) <= 0 {
		opts.InMemory = true
	}

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}
	return &webhookStore{store}, nil
}

func (s *webhookStore) add(hook *Webhook) error {
	return s.store.Insert(hook.ID, *hook)
}

// remove deletes the hook, if any.
func (s *webhookStore) remove(id string) error {
	if err := s.store.Delete(id, Webhook{}); err != nil && err != badgerhold.ErrNotFound {
		return err
	}
	return nil
}

func (s *webhookStore) findByTopic(topic string) ([]Webhook, error) {
	var hooks []Webhook
	query := badgerhold.Where("Event").Eq(topic).Index("Event")
	if err := s.store.Find(&hooks, query); err != nil {
		return nil, err
	}
	return hooks, nil
}

func (s *webhookStore) close() error {
	return s.store.Close()
}
