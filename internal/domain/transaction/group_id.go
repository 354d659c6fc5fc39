package transaction

import (
	"strings"

	"github.com/google/uuid"
)

// NewGroupID 生成交易组ID
// 128位随机数(UUID v4)去掉连字符,32位小写十六进制,与历史数据格式一致
func NewGroupID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsValidGroupID 校验交易组ID格式:32位小写十六进制
func IsValidGroupID(id string) bool {
	if len(id) != 32 || id != strings.ToLower(id) {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
