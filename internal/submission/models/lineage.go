package models

// Other is the escape-hatch value accepted for gothram and house name. Any
// submission using it waits for an admin decision.
const Other = "Other"

// Lineage is one gothram and the house names registered under it.
type Lineage struct {
	Gothram    string   `json:"gothram"`
	HouseNames []string `json:"houseNames"`
}

// lineages is static reference data; it is never mutated after init and is
// only handed out as copies.
// TODO: replace with the community's published gothram and house-name list;
// these entries are placeholders and unlisted houses must pick Other.
var lineages = []Lineage{
	{Gothram: "Atreya", HouseNames: []string{"Alluri", "Bommireddy", "Chilakala", "Gaddam"}},
	{Gothram: "Bharadwaja", HouseNames: []string{"Desuru", "Kandula", "Mallela", "Pasham", "Yeruva"}},
	{Gothram: "Gautama", HouseNames: []string{"Annapureddy", "Gangireddy", "Kotha", "Vanga"}},
	{Gothram: "Harita", HouseNames: []string{"Bathula", "Muppidi", "Nallamilli"}},
	{Gothram: "Kashyapa", HouseNames: []string{"Avula", "Challa", "Duvvuru", "Koppula", "Thummala"}},
	{Gothram: "Kaundinya", HouseNames: []string{"Ealeti", "Gurram", "Pailla"}},
	{Gothram: "Shandilya", HouseNames: []string{"Bhimireddy", "Konda", "Medapati", "Tippana"}},
	{Gothram: "Srivatsa", HouseNames: []string{"Jakkireddy", "Lingala", "Pulagam"}},
	{Gothram: "Vasishta", HouseNames: []string{"Chinthala", "Dwarampudi", "Karri", "Sama"}},
	{Gothram: "Vishwamitra", HouseNames: []string{"Anumula", "Kasu", "Vemireddy"}},
}

var lineageIndex = func() map[string]map[string]struct{} {
	idx := make(map[string]map[string]struct{}, len(lineages))
	for _, l := range lineages {
		houses := make(map[string]struct{}, len(l.HouseNames))
		for _, h := range l.HouseNames {
			houses[h] = struct{}{}
		}
		idx[l.Gothram] = houses
	}
	return idx
}()

// Lineages returns a copy of the reference table in display order.
func Lineages() []Lineage {
	out := make([]Lineage, len(lineages))
	for i, l := range lineages {
		out[i] = Lineage{Gothram: l.Gothram, HouseNames: append([]string(nil), l.HouseNames...)}
	}
	return out
}

// IsKnownGothram reports whether g is listed or is Other.
func IsKnownGothram(g string) bool {
	if g == Other {
		return true
	}
	_, ok := lineageIndex[g]
	return ok
}

// HouseNamesFor returns the house names of gothram g, nil if g is unlisted.
func HouseNamesFor(g string) []string {
	for _, l := range lineages {
		if l.Gothram == g {
			return append([]string(nil), l.HouseNames...)
		}
	}
	return nil
}

// IsKnownHouseName reports whether house is valid under gothram. Other is
// always accepted. Under the Other gothram there is no list, so any non-empty
// house name is accepted.
func IsKnownHouseName(gothram, house string) bool {
	if house == "" {
		return false
	}
	if house == Other || gothram == Other {
		return true
	}
	houses, ok := lineageIndex[gothram]
	if !ok {
		return false
	}
	_, ok = houses[house]
	return ok
}
