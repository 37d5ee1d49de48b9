package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindSimilar(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		existing  []string
		want      string
		found     bool
	}{
		{"exact different case", "react", []string{"Vue", "React"}, "React", true},
		{"exact wins over earlier containment", "go", []string{"Golang", "Go"}, "Go", true},
		{"containment candidate inside existing", "React", []string{"React Native"}, "React Native", true},
		{"containment existing inside candidate", "React Native", []string{"React"}, "React", true},
		{"typo within distance", "Pythom", []string{"Python"}, "Python", true},
		{"two edits", "Kubernets", []string{"Kubernetes"}, "Kubernetes", true},
		{"short strings guarded", "Go", []string{"C"}, "", false},
		{"too many edits", "Rust", []string{"Java"}, "", false},
		{"earliest item wins, not closest", "Pythn", []string{"Pytho", "Python"}, "Pytho", true},
		{"no match", "Docker", []string{"Kubernetes", "Helm"}, "", false},
		{"empty collection", "Docker", nil, "", false},
		{"empty candidate", "", []string{"Docker"}, "", false},
		{"empty items skipped", "Docker", []string{"", "Dockre"}, "Dockre", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindSimilar(tt.candidate, tt.existing)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindSimilarLengthGuardUsesShorterString(t *testing.T) {
	// "Vue" vs "Vu" is one edit apart but the shorter side is only two runes;
	// containment still catches it.
	got, ok := FindSimilar("Vu", []string{"Vue"})
	assert.True(t, ok)
	assert.Equal(t, "Vue", got)

	// "Ab" vs "Xy" shares nothing and the guard blocks the distance check.
	_, ok = FindSimilar("Ab", []string{"Xy"})
	assert.False(t, ok)
}
