package models

import "testing"

func TestParseActivityType(t *testing.T) {
	tests := []struct {
		input string
		want  ActivityType
	}{
		{input: "card_click", want: ActivityCardClick},
		{input: "task_complete", want: ActivityTaskComplete},
		{input: "breathing_session", want: ActivityBreathingSession},
		{input: "other", want: ActivityOther},
		{input: "", want: ActivityOther},
		{input: "balloon_pop", want: ActivityOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseActivityType(tt.input); got != tt.want {
				t.Errorf("ParseActivityType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestReviewValidation(t *testing.T) {
	tests := []struct {
		name    string
		review  Review
		wantErr bool
	}{
		{name: "valid", review: Review{ID: "r1", Rating: 5}, wantErr: false},
		{name: "rating too low", review: Review{ID: "r1", Rating: 0}, wantErr: true},
		{name: "rating too high", review: Review{ID: "r1", Rating: 6}, wantErr: true},
		{name: "missing id", review: Review{Rating: 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.review.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGameStatsApply(t *testing.T) {
	five, ten, twelve := 5, 10, 12

	stats := GameStats{}.Apply(GameStatsUpdate{SimonMaxLevel: &five})
	stats = stats.Apply(GameStatsUpdate{BalloonsMaxScore: &ten})

	if stats.MemoryBestMoves != nil {
		t.Errorf("MemoryBestMoves = %v, want nil", *stats.MemoryBestMoves)
	}
	if stats.SimonMaxLevel != 5 || stats.BalloonsMaxScore != 10 {
		t.Errorf("stats = %+v, want simon 5 balloons 10", stats)
	}

	stats = stats.Apply(GameStatsUpdate{MemoryBestMoves: &twelve})
	twelve = 99
	if stats.MemoryBestMoves == nil || *stats.MemoryBestMoves != 12 {
		t.Error("Apply() should copy MemoryBestMoves, not alias it")
	}
}

func TestListValidation(t *testing.T) {
	tests := []struct {
		name    string
		value   Validator
		wantErr bool
	}{
		{name: "empty cards", value: CardList{}, wantErr: false},
		{name: "valid cards", value: CardList{{ID: "c1", Label: "Water"}}, wantErr: false},
		{name: "card without label", value: CardList{{ID: "c1"}}, wantErr: true},
		{name: "routine bad time", value: RoutineList{{ID: "t1", Title: "Brush teeth", Time: "25:99"}}, wantErr: true},
		{name: "routine no time", value: RoutineList{{ID: "t1", Title: "Brush teeth"}}, wantErr: false},
		{name: "alarm valid", value: AlarmList{{ID: "a1", Time: "07:30"}}, wantErr: false},
		{name: "alarm missing time", value: AlarmList{{ID: "a1"}}, wantErr: true},
		{name: "profile missing name", value: ProfileList{{ID: "p1"}}, wantErr: true},
		{name: "activity missing timestamp", value: ActivityLogList{{ID: "a1"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProfileListIndex(t *testing.T) {
	list := ProfileList{{ID: "a", Name: "Ana"}, {ID: "b", Name: "Bruno"}}
	if got := list.Index("b"); got != 1 {
		t.Errorf("Index(b) = %d, want 1", got)
	}
	if got := list.Index("zzz"); got != -1 {
		t.Errorf("Index(zzz) = %d, want -1", got)
	}
}
