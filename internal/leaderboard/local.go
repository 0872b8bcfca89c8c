package leaderboard

import "sort"

// localBoardSize caps each locally kept board.
const localBoardSize = 10

// LocalEntry is one row of the offline backup board.
type LocalEntry struct {
	Name     string `json:"name"`
	Score    int64  `json:"score"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

// LocalBoards is the offline backup: one small board per category, kept even
// when the service is unreachable so submissions are never lost entirely.
type LocalBoards map[string][]LocalEntry

// Add records an entry on a category's board. One row per player, best score
// kept, sorted descending, trimmed to the top ten.
func (b LocalBoards) Add(category string, entry LocalEntry) {
	board := b[category]

	replaced := false
	for i := range board {
		if board[i].Name != entry.Name {
			continue
		}
		if entry.Score > board[i].Score {
			board[i] = entry
		}
		replaced = true
		break
	}
	if !replaced {
		board = append(board, entry)
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})
	if len(board) > localBoardSize {
		board = board[:localBoardSize]
	}
	b[category] = board
}

// Top returns a category's board, best first.
func (b LocalBoards) Top(category string) []LocalEntry {
	return b[category]
}
