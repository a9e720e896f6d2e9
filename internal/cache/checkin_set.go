package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

const checkInKeyPrefix = "checkin:"

// toggle removes the member if present, otherwise adds it; returns the new state.
var toggleScript = redis.NewScript(`
if redis.call("SREM", KEYS[1], ARGV[1]) == 1 then
	return 0
end
redis.call("SADD", KEYS[1], ARGV[1])
return 1
`)

// CheckInSet stores checked-in payment order ids as one Redis set per event.
type CheckInSet struct {
	Client *redis.Client
}

func NewCheckInSet(client *redis.Client) *CheckInSet {
	return &CheckInSet{Client: client}
}

func checkInKey(eventCode string) string {
	return checkInKeyPrefix + eventCode
}

func (s *CheckInSet) CheckedIn(ctx context.Context, eventCode string) (map[int64]bool, error) {
	members, err := s.Client.SMembers(ctx, checkInKey(eventCode)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read check-in set: %w", err)
	}

	out := make(map[int64]bool, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		out[id] = true
	}
	return out, nil
}

func (s *CheckInSet) SetCheckIn(ctx context.Context, eventCode string, id int64, checkedIn bool, _ string) error {
	member := strconv.FormatInt(id, 10)
	if checkedIn {
		return s.Client.SAdd(ctx, checkInKey(eventCode), member).Err()
	}
	return s.Client.SRem(ctx, checkInKey(eventCode), member).Err()
}

func (s *CheckInSet) ToggleCheckIn(ctx context.Context, eventCode string, id int64, _ string) (bool, error) {
	res, err := toggleScript.Run(ctx, s.Client, []string{checkInKey(eventCode)}, strconv.FormatInt(id, 10)).Int()
	if err != nil {
		return false, fmt.Errorf("failed to toggle check-in: %w", err)
	}
	return res == 1, nil
}
