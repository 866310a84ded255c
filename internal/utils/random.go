package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
	"建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

// 随机用户中外勤人员占多数
var roles = []domain.Role{
	domain.RoleFieldStaff,
	domain.RoleFieldStaff,
	domain.RoleFieldStaff,
	domain.RoleSupervisor,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		username += py[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var mobilePrefixes = []string{"133", "135", "138", "150", "177", "186", "189"}

func GenerateRandomPhone() string {
	return mobilePrefixes[rand.Intn(len(mobilePrefixes))] + fmt.Sprintf("%08d", rand.Intn(100000000))
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Phone:        GenerateRandomPhone(),
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

var (
	morningTasks = []string{
		"巡检一号机房", "走访客户", "线路排查", "设备安装", "园区弱电检修", "交换机更换", "",
	}
	afternoonTasks = []string{
		"整理巡检记录", "光纤熔接", "用户回访", "仓库盘点", "配合施工", "培训", "",
	}
)

// GenerateRandomEntries 生成 7 天的随机条目，周末大概率休息
func GenerateRandomEntries() []domain.ScheduleEntry {
	entries := make([]domain.ScheduleEntry, domain.DaysPerWeek)
	for i := range entries {
		day := int32(i + 1)
		entries[i].DayNumber = day

		if day >= 6 && rand.Intn(4) != 0 {
			entries[i].IsDayOff = true
			continue
		}

		entries[i].MorningText = morningTasks[rand.Intn(len(morningTasks))]
		entries[i].AfternoonText = afternoonTasks[rand.Intn(len(afternoonTasks))]
	}
	return entries
}
