package classify

import (
	"testing"

	"CourseWatcher/internal/domain"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		title       string
		description string
		want        domain.Category
	}{
		{"post lecture hyphen", "Post-Lecture notes", "", domain.CategoryPostLecture},
		{"post lecture space", "Post lecture quiz", "", domain.CategoryPostLecture},
		{"post lecture joined", "postlecture reading", "", domain.CategoryPostLecture},
		{"pre lecture", "Pre-Lecture Quiz", "", domain.CategoryPreLecture},
		{"pre lecture in description", "Week 2 reading", "complete before the pre lecture session", domain.CategoryPreLecture},
		{"lecture before tutorial", "Lecture 3 tutorial", "", domain.CategoryLecture},
		{"lecture upper case", "LECTURE SLIDES", "", domain.CategoryLecture},
		{"tutorial", "Tutorial 1", "", domain.CategoryTutorial},
		{"post beats pre", "Pre-lecture and post-lecture pack", "", domain.CategoryPostLecture},
		{"word boundary", "Lectures archive", "", domain.CategoryOthers},
		{"tutorials plural", "Tutorials", "", domain.CategoryOthers},
		{"nothing matches", "Course outline", "", domain.CategoryOthers},
		{"empty", "", "", domain.CategoryOthers},
		{"title and description joined by space", "pre", "lecture", domain.CategoryPreLecture},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tc.title, tc.description); got != tc.want {
				t.Fatalf("Classify(%q, %q) = %s, want %s", tc.title, tc.description, got, tc.want)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	first := Classify("Lecture 1", "slides")
	for i := 0; i < 10; i++ {
		if got := Classify("Lecture 1", "slides"); got != first {
			t.Fatalf("run %d: got %s, want %s", i, got, first)
		}
	}
}
