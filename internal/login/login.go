// Package login implements the bancho login state machine: parsing the
// client's login payload, verifying credentials, enforcing account status
// and client-version checks, the tokens-lock duplicate-session guard, and
// assembly of the full login response packet stream. Grounded on the
// original implementation's api/bancho.py, usecases/login.py, and
// usecases/cryptography.py.
package login

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"akatsuki.pw/bancho/internal/auth"
	"akatsuki.pw/bancho/internal/channels"
	"akatsuki.pw/bancho/internal/codec"
	"akatsuki.pw/bancho/internal/config"
	"akatsuki.pw/bancho/internal/countries"
	"akatsuki.pw/bancho/internal/database"
	"akatsuki.pw/bancho/internal/geo"
	"akatsuki.pw/bancho/internal/kv"
	"akatsuki.pw/bancho/internal/lock"
	"akatsuki.pw/bancho/internal/models"
	"akatsuki.pw/bancho/internal/notify"
	"akatsuki.pw/bancho/internal/sessions"
	"akatsuki.pw/bancho/internal/streams"
)

// clientVersionRegex matches osu! client version strings such as
// "b20230101", "b20230101.1", "b20230101tourney".
var clientVersionRegex = regexp.MustCompile(
	`^b(?P<ver>\d{8})(?:\.(?P<subver>\d))?(?P<stream>beta|cuttingedge|dev|tourney)?$`,
)

const clientVersionMaxAge = 365 * 24 * time.Hour

// validate enforces models.LoginData's struct tags (required fields, the
// 32-character md5 password length) once a payload has been structurally
// parsed, matching the teacher's pervasive use of go-playground/validator
// on inbound request structs.
var validate = validator.New()

const (
	msgInvalidCredentials = "Akatsuki: You have entered an invalid username or password. Please check your credentials and try again!"
	msgBotLoginAttempt    = "Akatsuki: Something went wrong during your login attempt... Please try again!"
	msgBanned             = "You are banned. The earliest we accept appeals is 2 months after your most recent offense, and we really only care for the truth."
	msgLocked             = "Your account is locked. You can't log in, but your profile and scores are still visible from the website. The earliest we accept appeals is 2 months after your most recent offense, and really only care for the truth."
	msgDuplicateSession   = "Akatsuki: You are already logged in somewhere else!"
	msgMaintenance        = "Akatsuki is currently in maintenance mode. Please try to login again later."
	msgMaintenanceStaff   = "Akatsuki is currently in maintenance mode. Only admins have full access to the server.\nType '!system maintenance off' in chat to disable maintenance mode."
)

var msgOutdatedClient = strings.Join([]string{
	"Hey!",
	"The osu! client you're trying to use is out of date.",
	"Custom/out of date osu! clients are not allowed on Akatsuki.",
	"Please relogin using the current osu! client - no fallback, sorry!",
}, "\n")

// Controller drives the bancho login sequence.
type Controller struct {
	db       *database.DB
	kv       *kv.Store
	locks    *lock.Manager
	geo      *geo.Reader
	sessions *sessions.Registry
	channels *channels.Registry
	streams  *streams.Registry
	notifier *notify.Notifier
	cfg      *config.AppConfig
}

// New builds a login Controller.
func New(
	db *database.DB,
	store *kv.Store,
	locks *lock.Manager,
	geoReader *geo.Reader,
	sessionRegistry *sessions.Registry,
	channelRegistry *channels.Registry,
	streamRegistry *streams.Registry,
	notifier *notify.Notifier,
	cfg *config.AppConfig,
) *Controller {
	return &Controller{
		db:       db,
		kv:       store,
		locks:    locks,
		geo:      geoReader,
		sessions: sessionRegistry,
		channels: channelRegistry,
		streams:  streamRegistry,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Result is the outcome of a login attempt: a wire-ready packet stream and
// the cho-token header value ("no" on failure).
type Result struct {
	Body     []byte
	ChoToken string
}

func failure(body []byte) Result {
	return Result{Body: body, ChoToken: "no"}
}

func success(body []byte, tokenID string) Result {
	return Result{Body: body, ChoToken: tokenID}
}

// formatHMSDuration renders a duration as "H:MM:SS" with unbounded hours,
// matching the original's f"{…:0>8}"-style timedelta rendering (e.g. 7 days
// comes out as "168:00:00", not Go's default "168h0m0s").
func formatHMSDuration(d time.Duration) string {
	total := int64(d.Seconds())
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}

func rejectionPacket(message string) []byte {
	w := codec.NewWriter()
	w.WriteAccountID(-1)
	w.WriteNotification(message)
	return w.Bytes()
}

// ParsePayload splits a raw login request body into its structured fields,
// matching the original implementation's parse_login_data exactly:
// "username\npassword_md5\nosu_version|utc_offset|display_city|client_hashes:|pm_private\n".
func ParsePayload(body []byte) (*models.LoginData, error) {
	parts := strings.SplitN(string(body), "\n", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("malformed login payload: expected 3 newline-separated sections")
	}
	username, passwordMD5, remainder := parts[0], parts[1], parts[2]

	fields := strings.SplitN(remainder, "|", 5)
	if len(fields) < 5 {
		return nil, fmt.Errorf("malformed login payload: expected 5 pipe-separated fields")
	}
	osuVersion, utcOffsetStr, displayCityStr, clientHashes, pmPrivateStr := fields[0], fields[1], fields[2], fields[3], fields[4]

	utcOffset, err := strconv.Atoi(utcOffsetStr)
	if err != nil {
		return nil, fmt.Errorf("malformed utc_offset: %w", err)
	}
	displayCity := displayCityStr == "1"
	pmPrivate := strings.TrimSpace(pmPrivateStr) == "1"

	if len(clientHashes) == 0 {
		return nil, fmt.Errorf("malformed login payload: empty client hashes")
	}
	hashParts := strings.SplitN(clientHashes[:len(clientHashes)-1], ":", 5)
	if len(hashParts) < 5 {
		return nil, fmt.Errorf("malformed login payload: expected 5 colon-separated client hashes")
	}

	return &models.LoginData{
		Username:         username,
		PasswordMD5:      passwordMD5,
		OsuVersion:       osuVersion,
		UTCOffset:        utcOffset,
		DisplayCity:      displayCity,
		PMPrivate:        pmPrivate,
		OsuPathMD5:       hashParts[0],
		AdaptersStr:      hashParts[1],
		AdaptersMD5:      hashParts[2],
		UninstallMD5:     hashParts[3],
		DiskSignatureMD5: hashParts[4],
	}, nil
}

// ResolveIP extracts the client's apparent IP from proxy headers,
// preserving the original implementation's literal "some_ip" fallback when
// no header yields one — a long-standing quirk, not a real address.
func ResolveIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return "some_ip"
}

type parsedVersion struct {
	date       time.Time
	tournament bool
}

func parseClientVersion(osuVersion string) (*parsedVersion, bool) {
	match := clientVersionRegex.FindStringSubmatch(osuVersion)
	if match == nil {
		return nil, false
	}
	names := clientVersionRegex.SubexpNames()
	groups := make(map[string]string, len(names))
	for i, name := range names {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	ver := groups["ver"]
	year, _ := strconv.Atoi(ver[0:4])
	month, _ := strconv.Atoi(ver[4:6])
	day, _ := strconv.Atoi(ver[6:8])
	return &parsedVersion{
		date:       time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		tournament: groups["stream"] == "tourney",
	}, true
}

// HandlePacketRequest drains a logged-in token's outgoing packet queue; a
// missing token produces an empty, still-200 response rather than an error,
// matching the original's handle_packet_request.
func (c *Controller) HandlePacketRequest(tokenID string) Result {
	token, err := c.sessions.FetchByID(tokenID)
	if err != nil {
		if err == database.ErrNotFound {
			return success(nil, tokenID)
		}
		log.Printf("[LOGIN] failed to fetch token %s: %v", tokenID, err)
		return success(nil, tokenID)
	}

	data, err := c.sessions.Dequeue(token.ID)
	if err != nil {
		log.Printf("[LOGIN] failed to dequeue packets for %s: %v", tokenID, err)
		return success(nil, tokenID)
	}
	return success(data, token.ID)
}

// Login runs the full login sequence against a parsed request.
func (c *Controller) Login(ctx context.Context, body []byte, r *http.Request) (Result, error) {
	loginData, err := ParsePayload(body)
	if err != nil {
		return failure(rejectionPacket(msgBotLoginAttempt)), nil
	}
	if err := validate.Struct(loginData); err != nil {
		return failure(rejectionPacket(msgBotLoginAttempt)), nil
	}

	user, err := c.db.GetUserByUsername(loginData.Username)
	if err != nil {
		if err == database.ErrNotFound {
			return failure(rejectionPacket(msgInvalidCredentials)), nil
		}
		return Result{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.ID == sessions.BotUserID {
		return failure(rejectionPacket(msgBotLoginAttempt)), nil
	}

	correctPassword, err := auth.VerifyPassword(ctx, c.kv, user.PasswordMD5, loginData.PasswordMD5)
	if err != nil {
		return Result{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !correctPassword {
		return failure(rejectionPacket(msgInvalidCredentials)), nil
	}

	pendingVerification := user.IsPendingVerification()
	if !pendingVerification {
		if user.IsBanned() {
			return failure(rejectionPacket(msgBanned)), nil
		}
		if user.IsLocked() {
			return failure(rejectionPacket(msgLocked)), nil
		}
	}

	version, ok := parseClientVersion(loginData.OsuVersion)
	if !ok {
		return failure(rejectionPacket(msgBotLoginAttempt)), nil
	}
	if version.date.Before(time.Now().Add(-clientVersionMaxAge)) {
		log.Printf("[LOGIN] denied outdated client: username=%s osu_version=%s", user.Username, loginData.OsuVersion)
		return failure(rejectionPacket(msgOutdatedClient)), nil
	}

	ip := ResolveIP(r)

	if err := c.db.LogIP(user.ID, ip); err != nil {
		return Result{}, fmt.Errorf("failed to log ip: %w", err)
	}

	usingTournamentClient := version.tournament

	token, err := c.createSessionUnderLock(user, loginData, ip, usingTournamentClient)
	if err != nil {
		if err == errDuplicateSession {
			return failure(rejectionPacket(msgDuplicateSession)), nil
		}
		return Result{}, err
	}

	log.Printf("[LOGIN] successful login: username=%s ip=%s", user.Username, ip)

	if err := c.sessions.CheckRestricted(token.ID, user.ID, token.Privileges); err != nil {
		return Result{}, fmt.Errorf("failed to check restriction notice: %w", err)
	}

	w := codec.NewWriter()
	now := time.Now().Unix()

	if err := c.applyFreeze(w, user, token, now); err != nil {
		return Result{}, err
	}
	if err := c.applyDonorExpiry(w, user, token, now); err != nil {
		return Result{}, err
	}

	userRestricted := user.IsRestricted()
	userStaff := user.IsStaff()
	userTournamentStaff := user.IsTournamentStaff()

	if err := c.resolveLocation(user, token); err != nil {
		return Result{}, err
	}

	if c.cfg.LoginNotification != "" {
		w.WriteNotification(c.cfg.LoginNotification)
	}

	if c.cfg.MaintenanceMode && !userStaff {
		if err := c.sessions.DeleteOne(token.ID); err != nil {
			log.Printf("[LOGIN] failed to delete session during maintenance rejection: %v", err)
		}
		w.WriteAccountID(-1)
		w.WriteNotification(msgMaintenance)
		return failure(w.Bytes()), nil
	}
	if c.cfg.MaintenanceMode {
		w.WriteNotification(msgMaintenanceStaff)
	}

	silenceSeconds := int32(sessions.RemainingSilenceSeconds(token.SilenceEndTime))
	clientPrivileges := wirePrivileges(userRestricted, userStaff, userTournamentStaff)

	w.WriteProtocolVersion(19)
	w.WriteAccountID(int32(user.ID))
	w.WriteSilenceEnd(silenceSeconds)
	w.WritePrivileges(clientPrivileges)
	w.WriteUserPresence(presenceInfoFor(user, token, clientPrivileges))
	w.WriteUserStats(statsInfoFor(user, token))

	if err := c.channels.JoinChannel(token, "#osu"); err != nil {
		return Result{}, fmt.Errorf("failed to join #osu: %w", err)
	}
	if err := c.channels.JoinChannel(token, "#announce"); err != nil {
		return Result{}, fmt.Errorf("failed to join #announce: %w", err)
	}

	allChannels, err := c.channels.FetchAll()
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch channel catalog: %w", err)
	}
	for _, ch := range allChannels {
		if !ch.PublicRead || ch.Instance {
			continue
		}
		clientCount, err := c.db.FetchChannelClientCount(ch.Name)
		if err != nil {
			return Result{}, fmt.Errorf("failed to count channel clients: %w", err)
		}
		w.WriteChannelInfo(ch.Name, ch.Description, int16(clientCount))
	}
	w.WriteChannelInfoEnd()

	friends, err := c.db.FetchFriendIDs(user.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch friends list: %w", err)
	}
	w.WriteFriendsList(friends)

	if c.cfg.MainMenuIconURL != "" && c.cfg.MainMenuOnClick != "" {
		w.WriteMainMenuIcon(c.cfg.MainMenuIconURL, c.cfg.MainMenuOnClick)
	}

	if err := c.broadcastExistingPresences(w, token.ID); err != nil {
		return Result{}, err
	}

	if !userRestricted {
		broadcast := codec.NewWriter()
		broadcast.WriteUserPresence(presenceInfoFor(user, token, clientPrivileges))
		if err := c.streams.Broadcast("main", broadcast.Bytes()); err != nil {
			return Result{}, fmt.Errorf("failed to broadcast new presence: %w", err)
		}
	}

	return success(w.Bytes(), token.ID), nil
}

var errDuplicateSession = fmt.Errorf("duplicate session")

// createSessionUnderLock performs the duplicate-check-and-create critical
// section under the tokens advisory lock, mirroring the original's
// "async with lock: check duplicates; create token" block.
func (c *Controller) createSessionUnderLock(
	user *models.User,
	loginData *models.LoginData,
	ip string,
	tournament bool,
) (*models.Token, error) {
	handle, err := c.locks.Acquire(context.Background(), lock.TokensLockName)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire tokens lock: %w", err)
	}
	defer func() {
		if err := handle.Unlock(context.Background()); err != nil {
			log.Printf("[LOGIN] failed to release tokens lock: %v", err)
		}
	}()

	if !tournament {
		existing, err := c.sessions.FetchByUserID(user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check for duplicate sessions: %w", err)
		}
		if len(existing) > 0 {
			return nil, errDuplicateSession
		}
	}

	token, err := c.sessions.CreateOne(sessions.NewTokenParams{
		UserID:            user.ID,
		Username:          user.Username,
		Privileges:        user.Privileges,
		Whitelist:         user.Whitelist,
		SilenceEndTime:    user.SilenceEnd,
		IP:                ip,
		UTCOffset:         loginData.UTCOffset,
		Tournament:        tournament,
		BlockNonFriendsDM: loginData.PMPrivate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// applyFreeze implements the freeze sub-state-machine: arm the timer,
// warn, or restrict-on-deadline, appending any resulting packets to w.
func (c *Controller) applyFreeze(w *codec.Writer, user *models.User, token *models.Token, now int64) error {
	if user.Frozen == 0 {
		return nil
	}

	frozenUntil := user.Frozen
	if frozenUntil == 1 {
		deadline, err := c.db.ArmFreezeTimer(user.ID, now)
		if err != nil {
			return err
		}
		frozenUntil = deadline
	}

	reasonSuffix := ""
	if user.FreezeReason != nil && *user.FreezeReason != "" {
		reasonSuffix = fmt.Sprintf(" as a result of:\n\n%s\n", *user.FreezeReason)
	}

	if frozenUntil > now {
		remaining := time.Duration(frozenUntil-now) * time.Second
		message := strings.Join([]string{
			fmt.Sprintf("Your account has been frozen by an administrator%s", reasonSuffix),
			"This is not a restriction, but will lead to one if ignored.",
			"You are required to submit a liveplay using the (specified criteria)[https://pastebin.com/BwcXp6Cr]",
			"Please remember we are not stupid - we have done plenty of these before and have heard every excuse in the book; if you are breaking rules, your best bet would be to admit to a staff member, lying will only end up digging your grave deeper.",
			"-------------",
			"If you have any questions or are ready to liveplay, please contact an (Akatsuki Administrator)[https://akatsuki.pw/team] {ingame, (Discord)[https://akatsuki.pw/discord], etc.}",
			fmt.Sprintf("Time until account restriction: %s.", formatHMSDuration(remaining)),
		}, "\n")

		bot, err := c.sessions.FetchBot()
		if err != nil {
			return fmt.Errorf("bot token missing: %w", err)
		}
		w.WriteSendMessage(bot.Username, message, token.Username, int32(bot.UserID))
		return nil
	}

	newPrivileges, err := c.restrictUser(user.ID, user.Privileges)
	if err != nil {
		return err
	}
	user.Privileges = newPrivileges
	token.Privileges = newPrivileges

	if err := c.db.UnfreezeUser(user.ID); err != nil {
		return fmt.Errorf("failed to clear freeze fields: %w", err)
	}
	user.Frozen = 0

	notification := strings.Join([]string{
		"Your account has been automatically restricted due to an account freeze being left unhandled for over 7 days.",
		"You are still welcome to liveplay, although your account will remain in restricted mode unless this is handled.",
	}, "\n")
	w.WriteNotification(notification)

	if err := c.notifier.Rap(context.Background(), user.ID, "has been automatically restricted due to a pending freeze.", notify.ChannelNone, ""); err != nil {
		log.Printf("[LOGIN] failed to write rap log: %v", err)
	}
	if err := c.notifier.Anticheat(
		context.Background(),
		fmt.Sprintf("[%s](https://akatsuki.pw/u/%d) has been automatically restricted due to a pending freeze.", user.Username, user.ID),
		notify.ChannelGeneral,
	); err != nil {
		log.Printf("[LOGIN] failed to send anticheat webhook: %v", err)
	}

	return nil
}

// restrictUser clears USER_PUBLIC, publishes the ban notification, and
// removes the user from every leaderboard — a no-op if already restricted.
func (c *Controller) restrictUser(userID int, currentPrivileges int64) (int64, error) {
	if currentPrivileges&models.UserPublic == 0 {
		return currentPrivileges, nil
	}

	newPrivileges := currentPrivileges &^ models.UserPublic
	if err := c.db.UpdateUserPrivileges(userID, newPrivileges); err != nil {
		return 0, fmt.Errorf("failed to persist restriction: %w", err)
	}

	if err := c.kv.PublishBan(context.Background(), userID); err != nil {
		return 0, fmt.Errorf("failed to publish ban notification: %w", err)
	}

	country, err := c.db.FetchCountry(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch country for leaderboard removal: %w", err)
	}
	if err := c.kv.RemoveFromLeaderboards(context.Background(), userID, country); err != nil {
		return 0, fmt.Errorf("failed to remove from leaderboards: %w", err)
	}

	return newPrivileges, nil
}

// applyDonorExpiry implements the donor-expiry sub-state-machine.
//
// This preserves the original implementation's operator-precedence quirk
// literally: `privileges - USER_DONOR | (USER_PREMIUM if premium else 0)`.
// Go has no analogous integer-subtraction-then-OR idiom for bit clearing,
// so this is expressed with the equivalent bit operations
// (`&^ UserDonor`, then `| UserPremium` only when the user already had
// premium) — the same net effect the original's expression produces in
// every case actually reachable (USER_DONOR is always set when this runs).
func (c *Controller) applyDonorExpiry(w *codec.Writer, user *models.User, token *models.Token, now int64) error {
	if user.Privileges&models.UserDonor == 0 {
		return nil
	}

	hasPremium := user.Privileges&models.UserPremium != 0
	roleName := "supporter"
	if hasPremium {
		roleName = "premium"
	}

	if now >= user.DonorExpire {
		newPrivileges := user.Privileges &^ models.UserDonor
		if hasPremium {
			newPrivileges |= models.UserPremium
		}

		if err := c.db.UpdateUserPrivileges(user.ID, newPrivileges); err != nil {
			return fmt.Errorf("failed to revoke donor privileges: %w", err)
		}
		user.Privileges = newPrivileges
		token.Privileges = newPrivileges

		if err := c.db.DeleteUserBadges(user.ID, []int{36, 59}); err != nil {
			return fmt.Errorf("failed to delete donor badges: %w", err)
		}
		if err := c.db.ClearCustomBadgeFlags(user.ID); err != nil {
			return fmt.Errorf("failed to clear custom badge flags: %w", err)
		}

		w.WriteNotification(strings.Join([]string{
			fmt.Sprintf("Your %s tag has expired.", roleName),
			"Whether you continue to support us or not, we'd like to thank you to the moon and back for your support so far - it really means everything to us.",
			"- cmyui, and the Akatsuki Team",
		}, "\n"))

		if err := c.notifier.Anticheat(
			context.Background(),
			fmt.Sprintf("[%s](https://akatsuki.pw/u/%d)'s %s subscription has expired.", user.Username, user.ID, roleName),
			notify.ChannelConfidential,
		); err != nil {
			log.Printf("[LOGIN] failed to send anticheat webhook: %v", err)
		}
		if err := c.notifier.Rap(context.Background(), user.ID, fmt.Sprintf("%s subscription expired.", roleName), notify.ChannelNone, ""); err != nil {
			log.Printf("[LOGIN] failed to write rap log: %v", err)
		}
	} else if user.DonorExpire-now <= 86_400*7 {
		expiresIn := time.Duration(user.DonorExpire-now) * time.Second
		w.WriteNotification(fmt.Sprintf("Your %s tag will expire in %s", roleName, formatHMSDuration(expiresIn)))
	}

	return nil
}

// resolveLocation fills the token's country/latitude/longitude, using the
// user's stored website country for donors and a geolocation lookup of the
// login IP otherwise.
func (c *Controller) resolveLocation(user *models.User, token *models.Token) error {
	if token.Privileges&models.UserDonor != 0 {
		country, err := c.db.FetchCountry(user.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch donor country: %w", err)
		}
		token.Country = countries.ID(country)
		token.Latitude = 0
		token.Longitude = 0
		return nil
	}

	loc := c.geo.Lookup(token.IP)
	token.Country = countries.ID(loc.CountryAcronym)
	token.Latitude = loc.Latitude
	token.Longitude = loc.Longitude
	return nil
}

// broadcastExistingPresences appends a user_presence packet for every other
// currently-connected, unrestricted token (all but selfTokenID) to the
// response stream, matching the "tell the new client about everyone else"
// block of the original.
func (c *Controller) broadcastExistingPresences(w *codec.Writer, selfTokenID string) error {
	handle, err := c.locks.Acquire(context.Background(), lock.TokensLockName)
	if err != nil {
		return fmt.Errorf("failed to acquire tokens lock: %w", err)
	}
	defer func() {
		if err := handle.Unlock(context.Background()); err != nil {
			log.Printf("[LOGIN] failed to release tokens lock: %v", err)
		}
	}()

	all, err := c.sessions.FetchAll()
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}
	for i := range all {
		t := &all[i]
		if t.ID == selfTokenID || t.IsRestricted() {
			continue
		}
		clientPrivileges := wirePrivileges(false, t.Privileges&models.AdminChatMod != 0, t.Privileges&models.UserTournamentStaff != 0)
		w.WriteUserPresence(presenceInfoFromToken(t, clientPrivileges))
	}
	return nil
}

func wirePrivileges(restricted, staff, tournamentStaff bool) int32 {
	var privileges int32 = 1
	if !restricted {
		privileges |= 4
	}
	if staff {
		privileges |= 2
	}
	if tournamentStaff {
		privileges |= 32
	}
	return privileges
}

func presenceInfoFor(user *models.User, token *models.Token, clientPrivileges int32) codec.PresenceInfo {
	return codec.PresenceInfo{
		UserID:           int32(user.ID),
		Username:         user.Username,
		UTCOffset:        int8(token.UTCOffset),
		CountryID:        uint8(token.Country),
		BanchoPrivileges: uint8(clientPrivileges),
		Mode:             uint8(token.Mode),
		Latitude:         float32(token.Latitude),
		Longitude:        float32(token.Longitude),
		GlobalRank:       int32(token.GlobalRank),
	}
}

func presenceInfoFromToken(t *models.Token, clientPrivileges int32) codec.PresenceInfo {
	return codec.PresenceInfo{
		UserID:           int32(t.UserID),
		Username:         t.Username,
		UTCOffset:        int8(t.UTCOffset),
		CountryID:        uint8(t.Country),
		BanchoPrivileges: uint8(clientPrivileges),
		Mode:             uint8(t.Mode),
		Latitude:         float32(t.Latitude),
		Longitude:        float32(t.Longitude),
		GlobalRank:       int32(t.GlobalRank),
	}
}

func statsInfoFor(user *models.User, token *models.Token) codec.StatsInfo {
	return codec.StatsInfo{
		UserID:          int32(user.ID),
		ActionID:        uint8(token.ActionID),
		ActionText:      token.ActionText,
		ActionMD5:       token.ActionMD5,
		ActionMods:      token.ActionMods,
		GameMode:        uint8(token.Mode),
		BeatmapID:       int32(token.ActionBeatmapID),
		RankedScore:     token.RankedScore,
		Accuracy:        float32(token.Accuracy),
		Playcount:       int32(token.Playcount),
		TotalScore:      token.TotalScore,
		GlobalRank:      int32(token.GlobalRank),
		PP:              int16(token.PP),
	}
}

