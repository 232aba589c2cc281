// Package search provides owner-scoped task search with Meilisearch as the
// primary backend and a Postgres fallback.
package search

import "log"

// Service routes queries to the primary backend when it is healthy and falls
// back to Postgres otherwise. Indexing is best effort: an unreachable index
// never fails the request that triggered it.
type Service struct {
	primary  Searcher
	indexer  Indexer
	fallback Searcher
}

// NewService builds the facade. primary and indexer may be nil when
// Meilisearch is not configured; fallback must not be nil.
func NewService(primary Searcher, indexer Indexer, fallback Searcher) *Service {
	return &Service{primary: primary, indexer: indexer, fallback: fallback}
}

// Backend names the backend currently answering queries.
func (s *Service) Backend() string {
	if s.primary != nil && s.primary.Healthy() {
		return "meilisearch"
	}
	return "postgres"
}

// Search executes the query against the healthy backend.
func (s *Service) Search(q Query) (Response, error) {
	if s.primary != nil && s.primary.Healthy() {
		results, total, err := s.primary.Search(q)
		if err == nil {
			return Response{Results: results, Total: total, Query: q.Text}, nil
		}
		log.Printf("search: primary backend failed, falling back: %v", err)
	}

	results, total, err := s.fallback.Search(q)
	if err != nil {
		return Response{}, err
	}
	return Response{Results: results, Total: total, Query: q.Text}, nil
}

// IndexTask pushes a task into the index in the background.
func (s *Service) IndexTask(t TaskRecord) {
	if s.indexer == nil {
		return
	}
	go func() {
		if err := s.indexer.IndexTask(t); err != nil {
			log.Printf("search: index task %s: %v", t.ID, err)
		}
	}()
}

// DeleteTask removes a task from the index in the background.
func (s *Service) DeleteTask(id string) {
	s.DeleteTasks([]string{id})
}

// DeleteTasks removes tasks from the index in the background. Used after
// cascade deletes, with the ids snapshotted before the delete.
func (s *Service) DeleteTasks(ids []string) {
	if s.indexer == nil || len(ids) == 0 {
		return
	}
	go func() {
		for _, id := range ids {
			if err := s.indexer.DeleteTask(id); err != nil {
				log.Printf("search: delete task %s from index: %v", id, err)
			}
		}
	}()
}
