package game

import "sort"

// VoteCount 某个嫌疑人获得的票数
type VoteCount struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// TallyVotes 统计投票，返回所有并列最高票的嫌疑人（按ID排序）。
// 空字符串表示超时弃权，不计票；没有有效票时返回空切片。
func TallyVotes(votes map[string]string) []VoteCount {
	counts := make(map[string]int)
	for _, suspect := range votes {
		if suspect == "" {
			continue
		}
		counts[suspect]++
	}

	maxCount := 0
	var top []VoteCount
	for suspect, count := range counts {
		switch {
		case count > maxCount:
			maxCount = count
			top = []VoteCount{{UserID: suspect, Count: count}}
		case count == maxCount:
			top = append(top, VoteCount{UserID: suspect, Count: count})
		}
	}

	sort.Slice(top, func(i, j int) bool { return top[i].UserID < top[j].UserID })
	if top == nil {
		top = []VoteCount{}
	}
	return top
}

// IsTie 是否出现平票
func IsTie(top []VoteCount) bool {
	return len(top) > 1
}
