package models

// ValidResourceType reports whether t is a recognized resource type.
func ValidResourceType(t ResourceType) bool {
	for _, v := range ResourceTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ValidCategory reports whether c is a recognized subject category.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidSemester reports whether s is a recognized semester label.
func ValidSemester(s string) bool {
	for _, v := range Semesters {
		if v == s {
			return true
		}
	}
	return false
}

// ValidYear reports whether y is a recognized study year.
func ValidYear(y string) bool {
	for _, v := range Years {
		if v == y {
			return true
		}
	}
	return false
}

// ValidDifficulty reports whether d is a recognized difficulty grade.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ValidVoteValue reports whether v is a recognized vote direction.
func ValidVoteValue(v VoteValue) bool {
	return v == VoteUp || v == VoteDown
}
