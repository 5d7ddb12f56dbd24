package leaderboard

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestRankOrdersDescendingWithStableTies(t *testing.T) {
	a := SchoolTotal{SchoolID: uuid.New(), Name: "Alder", TotalPoints: 300}
	b := SchoolTotal{SchoolID: uuid.New(), Name: "Birch", TotalPoints: 500}
	c := SchoolTotal{SchoolID: uuid.New(), Name: "Cedar", TotalPoints: 300}

	ranked := Rank([]SchoolTotal{a, b, c}, 10, nil)

	wantOrder := []string{"Birch", "Alder", "Cedar"}
	if len(ranked) != 3 {
		t.Fatalf("got %d entries, want 3", len(ranked))
	}
	for i, name := range wantOrder {
		if ranked[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, ranked[i].Name, name)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("position %d rank = %d, want %d", i, ranked[i].Rank, i+1)
		}
	}
}

func TestRankLimitsToTopN(t *testing.T) {
	var totals []SchoolTotal
	for i := 0; i < 8; i++ {
		totals = append(totals, SchoolTotal{SchoolID: uuid.New(), TotalPoints: i * 10})
	}

	ranked := Rank(totals, TopSize, nil)

	if len(ranked) != TopSize {
		t.Fatalf("got %d entries, want %d", len(ranked), TopSize)
	}
	if ranked[0].TotalPoints != 70 {
		t.Errorf("top school has %d points, want 70", ranked[0].TotalPoints)
	}
}

func TestRankMarksRequesterInsideTheCut(t *testing.T) {
	mine := uuid.New()
	totals := []SchoolTotal{
		{SchoolID: uuid.New(), TotalPoints: 900},
		{SchoolID: mine, TotalPoints: 800},
		{SchoolID: uuid.New(), TotalPoints: 700},
	}

	ranked := Rank(totals, 3, &mine)

	if len(ranked) != 3 {
		t.Fatalf("got %d entries, want 3; requester in the cut must not be appended twice", len(ranked))
	}
	if !ranked[1].IsRequesterSchool {
		t.Error("requester school not marked")
	}
}

func TestRankAppendsRequesterBelowTheCut(t *testing.T) {
	// 150 schools, requester sits at true rank 37, page size 100 shows it,
	// so shrink the page to force the append path.
	mine := uuid.New()
	var totals []SchoolTotal
	for i := 0; i < 150; i++ {
		st := SchoolTotal{SchoolID: uuid.New(), Name: fmt.Sprintf("School %d", i), TotalPoints: (150 - i) * 10}
		if i == 36 {
			st.SchoolID = mine
		}
		totals = append(totals, st)
	}

	ranked := Rank(totals, 20, &mine)

	if len(ranked) != 21 {
		t.Fatalf("got %d entries, want 20 page entries plus the requester", len(ranked))
	}
	last := ranked[20]
	if !last.IsRequesterSchool {
		t.Fatal("appended entry is not the requester's school")
	}
	if last.Rank != 37 {
		t.Errorf("appended rank = %d, want 37", last.Rank)
	}
}

func TestRankAppendedRequesterSharesRankOnTies(t *testing.T) {
	mine := uuid.New()
	totals := []SchoolTotal{
		{SchoolID: uuid.New(), TotalPoints: 500},
		{SchoolID: uuid.New(), TotalPoints: 400},
		{SchoolID: uuid.New(), TotalPoints: 400},
		{SchoolID: mine, TotalPoints: 400},
	}

	ranked := Rank(totals, 2, &mine)

	last := ranked[len(ranked)-1]
	if !last.IsRequesterSchool {
		t.Fatal("requester not appended")
	}
	// Only one school is strictly ahead, so all three 400-point schools
	// share rank 2.
	if last.Rank != 2 {
		t.Errorf("tied requester rank = %d, want 2", last.Rank)
	}
}

func TestRankOmitsRequesterWithNoAggregateRow(t *testing.T) {
	mine := uuid.New()
	totals := []SchoolTotal{{SchoolID: uuid.New(), TotalPoints: 100}}

	ranked := Rank(totals, 10, &mine)

	if len(ranked) != 1 {
		t.Fatalf("got %d entries, want 1; a school with no students has nothing to show", len(ranked))
	}
	if ranked[0].IsRequesterSchool {
		t.Error("stranger school marked as requester's")
	}
}

func TestRankEmptyInput(t *testing.T) {
	if got := Rank(nil, FullSize, nil); len(got) != 0 {
		t.Errorf("got %d entries for empty input, want 0", len(got))
	}
}
