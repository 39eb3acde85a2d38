package matcher

import "testing"

func TestNormalize(t *testing.T) {
	all := AllTags()

	cases := []struct {
		name    string
		raw     string
		ignore  TagSet
		want    string
		removed []TagCategory
	}{
		{
			name: "LowercaseAndCollapse",
			raw:  "  ABC   Family ",
			ignore: all,
			want: "abc family",
		},
		{
			name:    "QualitySuffix",
			raw:     "HBO Latino HD",
			ignore:  all,
			want:    "hbo latino",
			removed: []TagCategory{TagQuality},
		},
		{
			name:    "QualityBracketed",
			raw:     "ESPN [HD]",
			ignore:  all,
			want:    "espn",
			removed: []TagCategory{TagQuality},
		},
		{
			name:    "BackupMarker",
			raw:     "TNT (Backup)",
			ignore:  all,
			want:    "tnt",
			removed: []TagCategory{TagQuality},
		},
		{
			name:    "GeographicPrefix",
			raw:     "US: AMC",
			ignore:  all,
			want:    "amc",
			removed: []TagCategory{TagGeographic},
		},
		{
			name:    "RegionalSuffix",
			raw:     "Showtime West",
			ignore:  all,
			want:    "showtime",
			removed: []TagCategory{TagRegional},
		},
		{
			name:    "MiscParenCode",
			raw:     "CNN (E)",
			ignore:  all,
			want:    "cnn",
			removed: []TagCategory{TagMiscellaneous},
		},
		{
			name:    "InterleavedSuffixes",
			raw:     "Starz East HD",
			ignore:  all,
			want:    "starz",
			removed: []TagCategory{TagQuality, TagRegional},
		},
		{
			name:   "CallsignParenSurvives",
			raw:    "ABC - NY Buffalo (WKBW)",
			ignore: all,
			want:   "abc - ny buffalo (wkbw)",
		},
		{
			name:   "NetworkPrefixNotGeographic",
			raw:    "ABC - WY Casper (KTWO)",
			ignore: all,
			want:   "abc - wy casper (ktwo)",
		},
		{
			name:    "StackedPrefixes",
			raw:     "US: UK: BBC America",
			ignore:  all,
			want:    "bbc america",
			removed: []TagCategory{TagGeographic},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, removed := Normalize(tc.raw, tc.ignore)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
			}
			if len(removed) != len(tc.removed) {
				t.Fatalf("removed = %v, want %v", removed, tc.removed)
			}
			for _, cat := range tc.removed {
				if !removed.Has(cat) {
					t.Fatalf("expected %s in removed set, got %v", cat, removed)
				}
			}
		})
	}
}

func TestNormalizeDisabledCategoryPreserved(t *testing.T) {
	ignore := TagSet{TagQuality: true}

	got, removed := Normalize("Showtime West HD", ignore)
	if got != "showtime west" {
		t.Fatalf("expected regional token preserved, got %q", got)
	}
	if removed.Has(TagRegional) {
		t.Fatal("regional should not be reported as removed when disabled")
	}
	if !removed.Has(TagQuality) {
		t.Fatal("quality should be reported as removed")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	ignoreSets := []TagSet{
		AllTags(),
		{},
		{TagQuality: true},
		{TagRegional: true, TagGeographic: true},
		{TagMiscellaneous: true},
	}
	names := []string{
		"ABC - NY Buffalo (WKBW)",
		"NBC (WAGT) Augusta, GA",
		"US: ESPN [HD]",
		"HBO Latino HD",
		"Showtime West HD",
		"CNN (E)",
		"UK - Sky Sports Main Event UHD",
		"Starz East (Backup)",
		"",
		"   ",
		"West",
	}

	for _, ignore := range ignoreSets {
		for _, name := range names {
			once, _ := Normalize(name, ignore)
			twice, _ := Normalize(once, ignore)
			if once != twice {
				t.Fatalf("Normalize not idempotent for %q with %v: %q != %q", name, ignore, once, twice)
			}
		}
	}
}
