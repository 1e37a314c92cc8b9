package game

const (
	scoreCitizenCatch = 1 // 多数人抓到骗子，每个非骗子玩家得分
	scoreLiarEscape   = 2 // 骗子没被抓到
	scoreLonelyGuess  = 1 // 多数人没抓到，但个人投中了骗子
	scoreLiarAnswer   = 1 // 骗子猜中关键词
)

// RoundOutcome 一轮结束时计分需要的信息
type RoundOutcome struct {
	LiarID     string
	Players    []string          // 本轮参与的玩家（回合顺序）
	Votes      map[string]string // voter -> suspect
	Matched    bool              // 唯一最高票是否为骗子
	LiarAnswer bool              // 骗子是否猜中关键词
}

// ApplyScore 按规则把本轮得分累加到 board 上，返回本轮每人的增量。
//
// 多数人抓到骗子时每个非骗子 +1；否则骗子 +2，个人投中骗子的非骗子 +1。
// 骗子猜中关键词额外 +1，与前面的分支无关。
func ApplyScore(board map[string]int, outcome RoundOutcome) map[string]int {
	delta := make(map[string]int)

	if outcome.Matched {
		for _, player := range outcome.Players {
			if player == outcome.LiarID {
				continue
			}
			delta[player] += scoreCitizenCatch
		}
	} else {
		delta[outcome.LiarID] += scoreLiarEscape
		for _, player := range outcome.Players {
			if player == outcome.LiarID {
				continue
			}
			if outcome.Votes[player] == outcome.LiarID {
				delta[player] += scoreLonelyGuess
			}
		}
	}

	if outcome.LiarAnswer {
		delta[outcome.LiarID] += scoreLiarAnswer
	}

	for player, d := range delta {
		// 中途离开的玩家不再计分
		if _, ok := board[player]; !ok {
			delete(delta, player)
			continue
		}
		board[player] += d
	}
	return delta
}
