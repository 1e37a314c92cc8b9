package room

// Listeners 按顺序把事件分发给多个接收者。
// 创建事件遇到第一个错误即停止，已成功的接收者会收到删除事件。
type Listeners []Listener

// OnRoomCreated 房间创建
func (ls Listeners) OnRoomCreated(roomID, ownerID string, players []string) error {
	for i, l := range ls {
		if err := l.OnRoomCreated(roomID, ownerID, players); err != nil {
			for _, prev := range ls[:i] {
				prev.OnRoomDeleted(roomID)
			}
			return err
		}
	}
	return nil
}

// OnRoomDeleted 房间删除
func (ls Listeners) OnRoomDeleted(roomID string) {
	for _, l := range ls {
		l.OnRoomDeleted(roomID)
	}
}

// OnPlayerJoined 玩家加入
func (ls Listeners) OnPlayerJoined(roomID, playerID string) {
	for _, l := range ls {
		l.OnPlayerJoined(roomID, playerID)
	}
}

// OnPlayerLeft 玩家离开
func (ls Listeners) OnPlayerLeft(roomID, playerID string) {
	for _, l := range ls {
		l.OnPlayerLeft(roomID, playerID)
	}
}
