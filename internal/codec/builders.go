package codec

// PresenceInfo carries the fields written by WriteUserPresence, decoupled
// from the sessions package to avoid an import cycle.
type PresenceInfo struct {
	UserID           int32
	Username         string
	UTCOffset        int8
	CountryID        uint8
	BanchoPrivileges uint8
	Mode             uint8
	Longitude        float32
	Latitude         float32
	GlobalRank       int32
}

// StatsInfo carries the fields written by WriteUserStats.
type StatsInfo struct {
	UserID      int32
	ActionID    uint8
	ActionText  string
	ActionMD5   string
	ActionMods  int64
	GameMode    uint8
	BeatmapID   int32
	RankedScore int64
	Accuracy    float32
	Playcount   int32
	TotalScore  int64
	GlobalRank  int32
	PP          int16
}

// WriteAccountID appends an account_id (5) packet: the new token's user id.
func (w *Writer) WriteAccountID(userID int32) {
	w.write(AccountID, packInt32(userID))
}

// WriteSendMessage appends a send_message (7) packet.
func (w *Writer) WriteSendMessage(from string, msg string, to string, fromID int32) {
	payload := append([]byte{}, packString(from)...)
	payload = append(payload, packString(msg)...)
	payload = append(payload, packString(to)...)
	payload = append(payload, packInt32(fromID)...)
	w.write(SendMessage, payload)
}

// WriteNotification appends a notification (24) packet.
func (w *Writer) WriteNotification(message string) {
	w.write(Notification, packString(message))
}

// WriteProtocolVersion appends a protocol_version (75) packet.
func (w *Writer) WriteProtocolVersion(version int32) {
	w.write(ProtocolVersion, packInt32(version))
}

// WriteSilenceEnd appends a silence_end (92) packet: remaining silence seconds.
func (w *Writer) WriteSilenceEnd(seconds int32) {
	w.write(SilenceEnd, packInt32(seconds))
}

// WritePrivileges appends a privileges (71) packet: the bancho privilege bitmask.
func (w *Writer) WritePrivileges(banchoPrivileges int32) {
	w.write(Privileges, packInt32(banchoPrivileges))
}

// WriteFriendsList appends a friends_list (72) packet.
func (w *Writer) WriteFriendsList(userIDs []int32) {
	payload := packInt16(int16(len(userIDs)))
	for _, id := range userIDs {
		payload = append(payload, packInt32(id)...)
	}
	w.write(FriendsList, payload)
}

// WriteMainMenuIcon appends a main_menu_icon (76) packet: "<icon_url>|<onclick_url>".
func (w *Writer) WriteMainMenuIcon(iconURL, onClickURL string) {
	w.write(MainMenuIcon, packString(iconURL+"|"+onClickURL))
}

// WriteChannelInfo appends a channel_info (65) packet describing one public channel.
func (w *Writer) WriteChannelInfo(name, description string, userCount int16) {
	payload := append([]byte{}, packString(name)...)
	payload = append(payload, packString(description)...)
	payload = append(payload, packInt16(userCount)...)
	w.write(ChannelInfo, payload)
}

// WriteChannelInfoEnd appends the channel_info_end (89) sentinel.
func (w *Writer) WriteChannelInfoEnd() {
	w.write(ChannelInfoEnd, nil)
}

// WriteChannelJoinSuccess appends a channel_join_success (64) packet.
func (w *Writer) WriteChannelJoinSuccess(channelName string) {
	w.write(ChannelJoinSuccess, packString(channelName))
}

// WriteChannelKick appends a channel_kick (66) packet.
func (w *Writer) WriteChannelKick(channelName string) {
	w.write(ChannelKick, packString(channelName))
}

// WriteChannelAutoJoin appends a channel_auto_join (67) packet.
func (w *Writer) WriteChannelAutoJoin(channelName string) {
	w.write(ChannelAutoJoin, packString(channelName))
}

// WriteUserLogout appends a user_logout (12) packet.
func (w *Writer) WriteUserLogout(userID int32) {
	w.write(UserLogout, packInt32(userID))
}

// WriteServerRestart appends a restart (86) packet.
func (w *Writer) WriteServerRestart(millis int32) {
	w.write(Restart, packInt32(millis))
}

// WriteUserPresence appends a user_presence (83) packet for one token.
func (w *Writer) WriteUserPresence(p PresenceInfo) {
	payload := append([]byte{}, packInt32(p.UserID)...)
	payload = append(payload, packString(p.Username)...)
	payload = append(payload, packUint8(uint8(int16(p.UTCOffset)+24))...)
	payload = append(payload, packUint8(p.CountryID)...)
	payload = append(payload, packUint8(p.BanchoPrivileges|(p.Mode<<5))...)
	payload = append(payload, packFloat32(p.Latitude)...)
	payload = append(payload, packFloat32(p.Longitude)...)
	payload = append(payload, packInt32(p.GlobalRank)...)
	w.write(UserPresence, payload)
}

// WriteUserStats appends a user_stats (11) packet for one token.
func (w *Writer) WriteUserStats(s StatsInfo) {
	payload := append([]byte{}, packInt32(s.UserID)...)
	payload = append(payload, packUint8(s.ActionID)...)
	payload = append(payload, packString(s.ActionText)...)
	payload = append(payload, packString(s.ActionMD5)...)
	payload = append(payload, packInt32(int32(s.ActionMods))...)
	payload = append(payload, packUint8(s.GameMode)...)
	payload = append(payload, packInt32(s.BeatmapID)...)
	payload = append(payload, packInt64(s.RankedScore)...)
	payload = append(payload, packFloat32(s.Accuracy/100.0)...)
	payload = append(payload, packInt32(s.Playcount)...)
	payload = append(payload, packInt64(s.TotalScore)...)
	payload = append(payload, packInt32(s.GlobalRank)...)
	payload = append(payload, packInt16(s.PP)...)
	w.write(UserStats, payload)
}

// WriteSpectatorJoined appends a spectator_joined (13) packet.
func (w *Writer) WriteSpectatorJoined(userID int32) { w.write(SpectatorJoined, packInt32(userID)) }

// WriteSpectatorLeft appends a spectator_left (14) packet.
func (w *Writer) WriteSpectatorLeft(userID int32) { w.write(SpectatorLeft, packInt32(userID)) }

// WriteFellowSpectatorJoined appends a fellow_spectator_joined (42) packet.
func (w *Writer) WriteFellowSpectatorJoined(userID int32) {
	w.write(FellowSpectatorJoined, packInt32(userID))
}

// WriteFellowSpectatorLeft appends a fellow_spectator_left (43) packet.
func (w *Writer) WriteFellowSpectatorLeft(userID int32) {
	w.write(FellowSpectatorLeft, packInt32(userID))
}

// WriteSpectatorCantSpectate appends a spectator_cant_spectate (22) packet.
func (w *Writer) WriteSpectatorCantSpectate(userID int32) {
	w.write(SpectatorCantSpectate, packInt32(userID))
}

// WriteUserSilenced appends a user_silenced (94) packet.
func (w *Writer) WriteUserSilenced(userID int32) { w.write(UserSilenced, packInt32(userID)) }

// WriteAccountRestricted appends an account_restricted (104) packet, no payload.
func (w *Writer) WriteAccountRestricted() { w.write(AccountRestricted, nil) }
