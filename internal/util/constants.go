package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ChoiceFieldPrefix 表单中选项字段名前缀，形如 choice_<questionId>
const ChoiceFieldPrefix = "choice_"

// PopularCourseLimit 课程列表按报名人数取前 N 门
const PopularCourseLimit = 10

const (
	MimeJSON = "application/json"
	MimeYAML = "application/x-yaml"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
