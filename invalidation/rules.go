package invalidation

import "strings"

// MatchPrefix returns a predicate matching keys that begin with prefix.
// An empty prefix matches every key.
func MatchPrefix(prefix string) Predicate {
	return func(key string, _ map[string]interface{}) bool {
		return strings.HasPrefix(key, prefix)
	}
}

// MatchSegment returns a predicate matching keys that contain segment as a
// whole colon-separated part. "user" matches "user:42" and "session:user:42"
// but not "username:42".
func MatchSegment(segment string) Predicate {
	return func(key string, _ map[string]interface{}) bool {
		for _, part := range strings.Split(key, ":") {
			if part == segment {
				return true
			}
		}
		return false
	}
}
