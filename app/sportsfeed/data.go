package sportsfeed

// Results returns the legacy result sequence. Baseball has no winners and is flagged as a warning.
func Results() []Result {
	return []Result{
		{SportKey: 1, SportType: "Football", Winners: []string{"Italy", "Peru", "South Korea"}},
		{SportKey: 2, SportType: "Weightlifting", Winners: []string{"Mongolia", "Germany", "Turkey"}},
		{SportKey: 3, SportType: "Rhythmic Gymnastics", Winners: []string{"Russia", "USA", "France"}},
		{SportKey: 4, SportType: "Water Polo", Winners: []string{"Spain", "Vietnam", "USA"}},
		{SportKey: 5, SportType: "Baseball", IsWarning: true},
		{SportKey: 6, SportType: "Rugby", Winners: []string{"South Africa", "Qatar", "Romania"}},
		{SportKey: 7, SportType: "Tennis", Winners: []string{"Spain", "Mexico", "Colombia"}},
	}
}

// SportEvents returns the tagged result sequence with two errors interleaved.
func SportEvents() []SportEvent {
	return []SportEvent{
		ResultSuccess{SportKey: 1, SportType: "Football", Winners: []string{"Italy", "Peru", "South Korea"}},
		ResultSuccess{SportKey: 2, SportType: "Weightlifting", Winners: []string{"Mongolia", "Germany", "Turkey"}},
		ResultError{ErrorKey: 10, ErrorType: "Network error"},
		ResultSuccess{SportKey: 3, SportType: "Rhythmic Gymnastics", Winners: []string{"Russia", "USA", "France"}},
		ResultSuccess{SportKey: 4, SportType: "Water Polo", Winners: []string{"Spain", "Vietnam", "USA"}},
		ResultSuccess{SportKey: 5, SportType: "Baseball", IsWarning: true},
		ResultError{ErrorKey: 20, ErrorType: "Permission error"},
		ResultSuccess{SportKey: 6, SportType: "Rugby", Winners: []string{"South Africa", "Qatar", "Romania"}},
		ResultSuccess{SportKey: 7, SportType: "Tennis", Winners: []string{"Spain", "Mexico", "Colombia"}},
	}
}

// AdEvents returns the advertisement stream.
func AdEvents() []AdEvent {
	return []AdEvent{{}, {}}
}
