package services

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"
)

// SynonymGroup maps a canonical domain term to its synonyms
type SynonymGroup struct {
	Canonical string
	Synonyms  []string
}

// DefaultSynonymGroups is the built-in salon ontology. Order matters: it
// determines the order of expanded terms and therefore float summation order.
var DefaultSynonymGroups = []SynonymGroup{
	{Canonical: "haircut", Synonyms: []string{"cut", "trim", "chop", "snip", "crop", "shave", "barber", "styling"}},
	{Canonical: "hair", Synonyms: []string{"hairstyle", "locks", "tresses", "mane"}},
	{Canonical: "color", Synonyms: []string{"colour", "dye", "tint", "highlight", "balayage", "ombre", "bleach"}},
	{Canonical: "beard", Synonyms: []string{"facial hair", "stubble", "goatee", "mustache", "moustache"}},
	{Canonical: "spa", Synonyms: []string{"massage", "relaxation", "therapy", "treatment", "wellness"}},
	{Canonical: "facial", Synonyms: []string{"face", "skin", "skincare", "cleanup", "glow"}},
	{Canonical: "bridal", Synonyms: []string{"bride", "wedding", "marriage", "engagement", "mehendi", "mehndi"}},
	{Canonical: "men", Synonyms: []string{"gents", "male", "boys", "gentleman"}},
	{Canonical: "women", Synonyms: []string{"ladies", "female", "girls", "womens"}},
	{Canonical: "premium", Synonyms: []string{"luxury", "exclusive", "vip", "elite", "deluxe", "top"}},
	{Canonical: "cheap", Synonyms: []string{"affordable", "budget", "low cost", "discount", "economical", "value"}},
	{Canonical: "near", Synonyms: []string{"nearby", "close", "closest", "around", "local", "proximity"}},
	{Canonical: "best", Synonyms: []string{"top", "rated", "popular", "recommended", "famous", "great"}},
	{Canonical: "style", Synonyms: []string{"fashion", "trend", "trendy", "modern", "look"}},
	{Canonical: "straightening", Synonyms: []string{"keratin", "rebonding", "smoothening", "smoothing"}},
	{Canonical: "perm", Synonyms: []string{"curling", "waves", "wavy", "curly"}},
	{Canonical: "manicure", Synonyms: []string{"nails", "nail art", "pedicure", "nail care"}},
	{Canonical: "makeup", Synonyms: []string{"cosmetics", "beauty", "makeover", "glam"}},
}

// TermExpansionService handles expansion of search terms into synonyms and related concepts
type TermExpansionService struct {
	groups []SynonymGroup
	mu     sync.RWMutex
}

// NewTermExpansionService creates a term expansion service over the built-in
// ontology. If configPath is non-empty, groups from that JSON file are merged
// in: existing canonical terms are replaced, new ones are appended.
func NewTermExpansionService(configPath string) (*TermExpansionService, error) {
	s := &TermExpansionService{
		groups: make([]SynonymGroup, 0, len(DefaultSynonymGroups)),
	}
	for _, g := range DefaultSynonymGroups {
		s.groups = append(s.groups, SynonymGroup{
			Canonical: g.Canonical,
			Synonyms:  append([]string(nil), g.Synonyms...),
		})
	}
	if configPath == "" {
		return s, nil
	}
	if err := s.loadConfig(configPath); err != nil {
		return nil, err
	}
	return s, nil
}

// loadConfig loads the term mappings from a JSON file
func (s *TermExpansionService) loadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var mappings map[string][]string
	if err := json.Unmarshal(data, &mappings); err != nil {
		return err
	}

	// Map iteration order is random; merge in key order
	keys := make([]string, 0, len(mappings))
	for k := range mappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		group := SynonymGroup{Canonical: strings.ToLower(k)}
		for _, syn := range mappings[k] {
			group.Synonyms = append(group.Synonyms, strings.ToLower(syn))
		}
		replaced := false
		for i := range s.groups {
			if s.groups[i].Canonical == group.Canonical {
				s.groups[i] = group
				replaced = true
				break
			}
		}
		if !replaced {
			s.groups = append(s.groups, group)
		}
	}
	return nil
}

// ExpandTokens returns the input tokens followed by the canonical term and
// every synonym of each group a token belongs to. Expansion is one hop only;
// a synonym reached through expansion does not pull in its own groups.
// Duplicates are dropped, first occurrence wins.
func (s *TermExpansionService) ExpandTokens(tokens []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expanded := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			expanded = append(expanded, term)
		}
	}

	for _, token := range tokens {
		add(token)
	}
	for _, token := range tokens {
		for _, g := range s.groups {
			if !g.contains(token) {
				continue
			}
			add(g.Canonical)
			for _, syn := range g.Synonyms {
				add(syn)
			}
		}
	}
	return expanded
}

// Expand expands a search query into a list of related terms including the original terms
func (s *TermExpansionService) Expand(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []string{}
	}
	return s.ExpandTokens(strings.Fields(query))
}

func (g SynonymGroup) contains(term string) bool {
	if term == g.Canonical {
		return true
	}
	for _, syn := range g.Synonyms {
		if syn == term {
			return true
		}
	}
	return false
}
