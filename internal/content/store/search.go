package store

import (
	"context"
	"strings"

	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
)

// SearchResults groups matches per collection, each in insertion order.
type SearchResults struct {
	Services  []*content.Service  `json:"services"`
	Documents []*content.Document `json:"documents"`
	Tutorials []*content.Tutorial `json:"tutorials"`
}

// Total is the number of matches across all groups.
func (r *SearchResults) Total() int {
	return len(r.Services) + len(r.Documents) + len(r.Tutorials)
}

// Search runs a case-insensitive substring match over every record:
//
//	services:  name, description
//	documents: title, content
//	tutorials: title, summary, content, tags
//
// There is no ranking and no index; every call scans the whole store. The
// caller rejects an empty query before getting here.
func (s *Store) Search(ctx context.Context, query string) (*SearchResults, error) {
	q := strings.ToLower(query)
	res := &SearchResults{
		Services:  []*content.Service{},
		Documents: []*content.Document{},
		Tutorials: []*content.Tutorial{},
	}

	services, err := s.repos.Services.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, svc := range services {
		if containsFold(q, svc.Name, svc.Description) {
			res.Services = append(res.Services, svc)
		}
	}

	docs, err := s.repos.Documents.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if containsFold(q, d.Title, d.Content) {
			res.Documents = append(res.Documents, d)
		}
	}

	tuts, err := s.repos.Tutorials.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tuts {
		if containsFold(q, t.Title, t.Summary, t.Content) || containsFold(q, t.Tags...) {
			res.Tutorials = append(res.Tutorials, t)
		}
	}
	return res, nil
}

// containsFold reports whether any field contains the already lower-cased q.
func containsFold(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
