package util

import (
	"strconv"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParseUintStrict 与 MustParseUint 相同，但保留错误；0 也视为非法 ID
func ParseUintStrict(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func UintToString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
