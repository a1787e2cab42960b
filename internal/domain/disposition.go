package domain

import "sort"

// Disposition is the outcome a reviewer assigns to a case.
type Disposition struct {
	Code          string `json:"code"`
	Instructions  string `json:"instructions"`
	NeedsFacility bool   `json:"needs_facility"`
}

var dispositions = map[string]Disposition{
	"home": {
		Code:         "home",
		Instructions: "Stay at home, rest, and take medication as necessary",
	},
	"LEVEL 1": {
		Code:          "LEVEL 1",
		Instructions:  "Please seek Triage Level 1 assistance; you will be provided with a list of nearby hospitals/clinics:",
		NeedsFacility: true,
	},
	"LEVEL 2": {
		Code:          "LEVEL 2",
		Instructions:  "Please seek Triage Level 2 assistance; you will be provided with a list of nearby hospitals/clinics:",
		NeedsFacility: true,
	},
	"LEVEL 3": {
		Code:          "LEVEL 3",
		Instructions:  "Please seek Triage Level 3 assistance; you will be provided with a list of nearby hospitals/clinics:",
		NeedsFacility: true,
	},
	"LEVEL 4": {
		Code:          "LEVEL 4",
		Instructions:  "Please seek Triage Level 4 assistance; you will be provided with a list of nearby hospitals/clinics:",
		NeedsFacility: true,
	},
	"gettest": {
		Code:         "gettest",
		Instructions: "Please get tested for COVID-19; you will be provided with a list of nearby testing locations:",
	},
	"checkinlater8": {
		Code:         "checkinlater8",
		Instructions: "Please stay put and text back in 8 hours",
	},
	"checkinlater16": {
		Code:         "checkinlater16",
		Instructions: "Please stay put and text back in 16 hours",
	},
	"checkinlater24": {
		Code:         "checkinlater24",
		Instructions: "Please stay put and text back in 24 hours",
	},
}

// LookupDisposition returns the disposition for code. ok is false for codes
// the reviewer UI does not offer; callers treat that as a requeue.
func LookupDisposition(code string) (d Disposition, ok bool) {
	d, ok = dispositions[code]
	return d, ok
}

// Dispositions lists every known disposition ordered by code.
func Dispositions() []Disposition {
	out := make([]Disposition, 0, len(dispositions))
	for _, d := range dispositions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
