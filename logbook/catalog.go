package logbook

// CatalogEntry lists the named procedures of a category and the number a
// resident is expected to log per year.
type CatalogEntry struct {
	Category     Category `json:"category"`
	Procedures   []string `json:"procedures"`
	AnnualTarget int      `json:"annualTarget"`
}

var catalog = []CatalogEntry{
	{
		Category: CategoryOperation,
		Procedures: []string{
			"Carotis EEA/TEA", "Aortenaneurysma Rohrprothese", "Aortenaneurysma Bypass",
			"Aortobi- oder monoiliakaler Bypass", "Aortobi- oder monofemoraler Bypass",
			"Iliofemoraler Bypass", "Crossover Bypass", "Femoralis TEA",
			"Fem-pop. P1 Bypass", "Fem-pop. P3 Bypass", "Fem-cruraler Bypass",
			"P1-P3 Bypass", "Wunddebridement - VAC Wechsel",
		},
		AnnualTarget: 100,
	},
	{
		Category: CategoryIntervention,
		Procedures: []string{
			"TEVAR", "FEVAR", "EVAR", "BEVAR", "Organstent", "Beckenstent",
			"Beinstent", "Thrombektomie over the wire",
		},
		AnnualTarget: 50,
	},
	{
		Category: CategoryProcedure,
		Procedures: []string{
			"ZVK-Anlage", "Drainage Thorax", "Drainage Abdomen",
			"Drainage Wunde Extremitäten", "Punktion/PE",
		},
		AnnualTarget: 30,
	},
}

// Catalog returns a copy of the procedure catalog in display order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	for i, c := range catalog {
		out[i] = c
		out[i].Procedures = append([]string(nil), c.Procedures...)
	}
	return out
}

// Categories returns the categories in catalog order.
func Categories() []Category {
	out := make([]Category, len(catalog))
	for i, c := range catalog {
		out[i] = c.Category
	}
	return out
}

// AnnualTarget returns the yearly quota of a category, 0 if unknown.
func AnnualTarget(c Category) int {
	for _, e := range catalog {
		if e.Category == c {
			return e.AnnualTarget
		}
	}
	return 0
}

// OpRoles returns the procedure roles in display order.
func OpRoles() []OpRole {
	return []OpRole{OpRoleSurgeon, OpRoleAssistant}
}
