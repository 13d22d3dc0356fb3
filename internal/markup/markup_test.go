package markup

import (
	"strings"
	"testing"
)

const samplePage = `
<html><body>
  <h1>  Software   Engineering </h1>
  <ul class="general-section-activities">
    <li class="activity"><a class="aalink" href="/mod/forum/view.php?id=7"><span class="instancename">Announcements<span class="accesshide "> Forum</span></span></a></li>
  </ul>
  <ul class="topics">
    <li class="section main">
      <h3 class="sectionname">Week 1</h3>
      <ul>
        <li class="activity"><a class="aalink" href="/a">A</a></li>
        <li class="activity"><a class="aalink" href="/b">B</a></li>
      </ul>
    </li>
  </ul>
</body></html>`

func TestGoqueryFind(t *testing.T) {
	t.Parallel()

	doc, err := FromReader(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}

	heading, ok := doc.Find(RoleHeading)
	if !ok {
		t.Fatal("heading not found")
	}
	if got := heading.Text(); got != "Software Engineering" {
		t.Fatalf("heading text = %q", got)
	}

	if _, ok := doc.Find(RoleNoticeBlock); ok {
		t.Fatal("unexpected notice block")
	}
}

func TestGoqueryTextExcludesRoles(t *testing.T) {
	t.Parallel()

	doc, err := FromReader(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}

	general := doc.FindAll(RoleGeneralActivity)
	if len(general) != 1 {
		t.Fatalf("expected 1 general activity, got %d", len(general))
	}
	name, ok := general[0].Find(RoleInstanceName)
	if !ok {
		t.Fatal("instance name not found")
	}
	if got := name.Text(RoleAccessibilityOnly); got != "Announcements" {
		t.Fatalf("text without accessibility spans = %q", got)
	}
	if got := name.Text(); got != "Announcements Forum" {
		t.Fatalf("full text = %q", got)
	}

	// the excluded span must still be part of the document afterwards
	again, _ := general[0].Find(RoleInstanceName)
	if got := again.Text(); got != "Announcements Forum" {
		t.Fatalf("document mutated by exclusion: %q", got)
	}
}

func TestGoqueryFindAllOrder(t *testing.T) {
	t.Parallel()

	doc, err := FromReader(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}

	sections := doc.FindAll(RoleSection)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	activities := sections[0].FindAll(RoleActivity)
	var hrefs []string
	for _, act := range activities {
		link, ok := act.Find(RoleLink)
		if !ok {
			t.Fatal("link not found")
		}
		href, _ := link.Attr("href")
		hrefs = append(hrefs, href)
	}
	if strings.Join(hrefs, ",") != "/a,/b" {
		t.Fatalf("unexpected order: %v", hrefs)
	}
}

func TestElementTree(t *testing.T) {
	t.Parallel()

	root := El(0, "",
		El(RoleHeading, "Course"),
		El(RoleSection, "",
			El(RoleSectionName, "Week 1"),
			El(RoleActivity, "",
				El(RoleInstanceName, "Quiz", El(RoleAccessibilityOnly, "Quiz")),
				El(RoleLink, "").WithAttr("href", "/q"),
			),
		),
	)

	heading, ok := root.Find(RoleHeading)
	if !ok || heading.Text() != "Course" {
		t.Fatalf("heading lookup failed: %v", heading)
	}

	activities := root.FindAll(RoleActivity)
	if len(activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(activities))
	}
	name, _ := activities[0].Find(RoleInstanceName)
	if got := name.Text(RoleAccessibilityOnly); got != "Quiz" {
		t.Fatalf("excluded text = %q", got)
	}
	if got := name.Text(); got != "QuizQuiz" {
		t.Fatalf("full text = %q", got)
	}
	link, _ := activities[0].Find(RoleLink)
	if href, ok := link.Attr("href"); !ok || href != "/q" {
		t.Fatalf("href = %q", href)
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	if got := NormalizeText("  a \n\t b  "); got != "a b" {
		t.Fatalf("NormalizeText = %q", got)
	}
}
