package assessment

// TaxonomyEntry pairs a category with the keywords that select it.
type TaxonomyEntry struct {
	Category Category
	Keywords []string
}

// DefaultTaxonomy returns the reference keyword taxonomy.
//
// Order matters: categories are scanned first to last and the first keyword
// hit wins, which keeps classification deterministic. The lists are
// configuration data, not behavior; callers may supply their own.
func DefaultTaxonomy() []TaxonomyEntry {
	return []TaxonomyEntry{
		{CategoryFinancial, []string{
			"money", "debt", "income", "salary", "saving", "savings",
			"invest", "budget", "wealth", "financial",
		}},
		{CategoryCareer, []string{
			"career", "job", "promotion", "business", "work", "startup",
			"professional", "interview",
		}},
		{CategoryHealth, []string{
			"health", "weight", "fitness", "exercise", "sleep", "diet",
			"run", "gym", "smoking",
		}},
		{CategoryRelationships, []string{
			"relationship", "partner", "marriage", "family", "friend",
			"friends", "dating", "parent", "children",
		}},
		{CategorySpiritual, []string{
			"spiritual", "meditation", "meditate", "faith", "prayer",
			"mindfulness", "purpose",
		}},
		{CategoryCreative, []string{
			"creative", "write", "writing", "paint", "music", "art",
			"draw", "novel", "compose",
		}},
		{CategoryPersonalGrowth, []string{
			"confidence", "habit", "learn", "learning", "growth",
			"discipline", "courage", "fear", "self",
		}},
	}
}
