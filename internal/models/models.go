// Package models defines the core data structures used throughout the application,
// representing database entities and internal data contracts for the bancho
// login-and-presence core.
package models

import "time"

// Privilege bits, mirrored from the original implementation's
// models/privileges.py bitmask used both in the database (users.privileges)
// and, reduced, on the wire (bancho_privileges).
const (
	UserPublic              = 1 << 0
	UserNormal              = 1 << 1
	UserDonor               = 1 << 2
	AdminAccessRAP          = 1 << 3
	AdminManageUsers        = 1 << 4
	AdminBanUsers           = 1 << 5
	AdminSilenceUsers       = 1 << 6
	AdminWipeUsers          = 1 << 7
	AdminManageBeatmaps     = 1 << 8
	AdminManageServers      = 1 << 9
	AdminManageSettings     = 1 << 10
	AdminManageBetaKeys     = 1 << 11
	AdminManageReports      = 1 << 12
	AdminManageDocs         = 1 << 13
	AdminManageBadges       = 1 << 14
	AdminViewRAPLogs        = 1 << 15
	AdminManagePrivileges   = 1 << 16
	AdminSendAlerts         = 1 << 17
	AdminChatMod            = 1 << 18
	AdminKickUsers          = 1 << 19
	UserPendingVerification = 1 << 20
	UserTournamentStaff     = 1 << 21
	UserPremium             = 1 << 22
	UserDeleted             = 1 << 23
)

// User represents a row in the 'users' table. Field names and set follow the
// original schema's READ_PARAMS column list.
type User struct {
	ID             int        `db:"id" json:"id"`
	Username       string     `db:"username" json:"username"`
	UsernameSafe   string     `db:"username_safe" json:"-"`
	PasswordMD5    string     `db:"password_md5" json:"-"`
	Salt           *string    `db:"salt" json:"-"`
	Email          string     `db:"email" json:"email"`
	RegisterDate   time.Time  `db:"register_datetime" json:"-"`
	LatestActivity int64      `db:"latest_activity" json:"-"`
	SilenceEnd     int64      `db:"silence_end" json:"-"`
	SilenceReason  *string    `db:"silence_reason" json:"-"`
	Privileges     int64      `db:"privileges" json:"privileges"`
	DonorExpire    int64      `db:"donor_expire" json:"-"`
	// Frozen is a tri-state timer: 0 = not frozen, 1 = freeze requested but
	// the 7-day countdown hasn't been armed yet, >1 = unix-seconds deadline.
	Frozen       int64   `db:"frozen" json:"-"`
	FreezeReason *string `db:"freeze_reason" json:"-"`
	Notes          *string    `db:"notes" json:"-"`
	BanDatetime    int64      `db:"ban_datetime" json:"-"`
	Whitelist      int        `db:"whitelist" json:"-"`
	ClanID         int        `db:"clan_id" json:"-"`
	ClanPrivileges int        `db:"clan_privileges" json:"-"`
	Country        string     `db:"-" json:"-"` // not read from the users row; the login flow reads the country via FetchCountry and leaves this empty
}

// IsRestricted reports whether the account lacks USER_PUBLIC — the bancho
// definition of "restricted" (shadow-banned, still able to log in).
func (u *User) IsRestricted() bool {
	return u.Privileges&UserPublic == 0
}

// IsBanned reports the account-suspended state: neither USER_PUBLIC nor
// USER_NORMAL set.
func (u *User) IsBanned() bool {
	return u.Privileges&(UserPublic|UserNormal) == 0
}

// IsLocked reports the pending-verification-lock state: USER_PUBLIC is set
// but USER_NORMAL is not.
func (u *User) IsLocked() bool {
	return u.Privileges&UserPublic != 0 && u.Privileges&UserNormal == 0
}

// IsStaff reports chat-moderation privilege ("BAT" on the wire).
func (u *User) IsStaff() bool {
	return u.Privileges&AdminChatMod != 0
}

// IsTournamentStaff reports tournament-staff privilege.
func (u *User) IsTournamentStaff() bool {
	return u.Privileges&UserTournamentStaff != 0
}

// IsPendingVerification reports whether the account is still awaiting its
// first successful login (bans/locks are not enforced until this clears).
func (u *User) IsPendingVerification() bool {
	return u.Privileges&UserPendingVerification != 0
}

// IsDonor reports active supporter privilege.
func (u *User) IsDonor() bool {
	return u.Privileges&UserDonor != 0
}

// Stats represents one mode's row, selected from users_stats/rx_stats/ap_stats
// depending on relax/autopilot, with global_rank filled in from Redis.
type Stats struct {
	UserID      int     `db:"user_id"`
	Mode        int     `db:"mode"`
	RankedScore int64   `db:"ranked_score"`
	TotalScore  int64   `db:"total_score"`
	PP          float64 `db:"pp"`
	Playcount   int64   `db:"playcount"`
	Accuracy    float64 `db:"accuracy"`
	GlobalRank  int64   `db:"-"`
}

// LoginData is the parsed, not-yet-validated payload of a bancho login request.
type LoginData struct {
	Username         string `validate:"required"`
	PasswordMD5      string `validate:"required,len=32"`
	OsuVersion       string `validate:"required"`
	UTCOffset        int
	DisplayCity      bool
	PMPrivate        bool
	OsuPathMD5       string
	AdaptersStr      string
	AdaptersMD5      string
	UninstallMD5     string
	DiskSignatureMD5 string
}

// Token represents one live login session ("client") for a user, matching
// the 'tokens' table's READ_PARAMS column list.
type Token struct {
	ID                string `db:"token_id"`
	UserID            int    `db:"user_id"`
	Username          string `db:"username"`
	Privileges        int64  `db:"privileges"`
	Whitelist         int    `db:"whitelist"`
	Kicked            bool   `db:"kicked"`
	LoginTime         int64  `db:"login_time"`
	PingTime          int64  `db:"ping_time"`
	UTCOffset         int    `db:"utc_offset"`
	Tournament        bool   `db:"tournament"`
	BlockNonFriendsDM bool   `db:"block_non_friends_dm"`

	SpectatingTokenID *string `db:"spectating_token_id"`
	SpectatingUserID  *int    `db:"spectating_user_id"`

	Latitude  float64 `db:"latitude"`
	Longitude float64 `db:"longitude"`
	IP        string  `db:"ip"`
	Country   int     `db:"country"`

	AwayMessage *string `db:"away_message"`
	MatchID     *int    `db:"match_id"`

	LastNPBeatmapID *int     `db:"last_np_beatmap_id"`
	LastNPMods      *int64   `db:"last_np_mods"`
	LastNPAccuracy  *float64 `db:"last_np_accuracy"`

	SilenceEndTime  int64 `db:"silence_end_time"`
	ProtocolVersion int   `db:"protocol_version"`
	SpamRate        int   `db:"spam_rate"`

	ActionID        int    `db:"action_id"`
	ActionText      string `db:"action_text"`
	ActionMD5       string `db:"action_md5"`
	ActionBeatmapID int    `db:"action_beatmap_id"`
	ActionMods      int64  `db:"action_mods"`
	Mode            int    `db:"mode"`
	Relax           bool   `db:"relax"`
	Autopilot       bool   `db:"autopilot"`

	RankedScore int64   `db:"ranked_score"`
	Accuracy    float64 `db:"accuracy"`
	Playcount   int64   `db:"playcount"`
	TotalScore  int64   `db:"total_score"`
	GlobalRank  int64   `db:"global_rank"`
	PP          int64   `db:"pp"`

	// Not persisted and not populated by the registries: the outgoing packet
	// queue lives in token_buffers, and channel/stream membership in
	// channel_tokens/stream_tokens.
	OutgoingQueue  [][]byte `db:"-"`
	ChannelsJoined []string `db:"-"`
}

// RelaxInt derives the 0/1/2 (vanilla/relax/autopilot) mode family used to
// pick which stats table and leaderboard family a token's score belongs to.
func (t *Token) RelaxInt() int {
	switch {
	case t.Autopilot:
		return 2
	case t.Relax:
		return 1
	default:
		return 0
	}
}

// IsBot reports whether this token belongs to the BanchoBot (user id 999).
func (t *Token) IsBot() bool { return t.UserID == 999 }

// IsRestricted mirrors User.IsRestricted using the token's cached privileges.
func (t *Token) IsRestricted() bool {
	return t.Privileges&UserPublic == 0
}

// Channel represents a row in the 'channels' table.
type Channel struct {
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	PublicRead  bool   `db:"public_read" json:"public_read"`
	PublicWrite bool   `db:"public_write" json:"public_write"`
	Moderated   bool   `db:"moderated" json:"moderated"`
	Instance    bool   `db:"instance" json:"instance"`
}

// Stream represents a row in the 'streams' table, a pub/sub fan-out group.
type Stream struct {
	Name string `db:"name" json:"name"`
}

// TokenBuffer represents one queued outgoing packet chunk in 'token_buffers'.
type TokenBuffer struct {
	BufferID int64  `db:"buffer_id"`
	TokenID  string `db:"token_id"`
	Buffer   []byte `db:"buffer"`
}
