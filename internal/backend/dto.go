package backend

// 백엔드(주간보고 시스템) API의 엔티티. 필드명은 API의 camelCase를 따른다.

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AttendanceType struct {
	ID       string `json:"id"`
	Code     string `json:"code"` // ANNUAL, BUSINESS_TRIP, ...
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

type Attendance struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	TypeID    string  `json:"typeId"`
	StartDate string  `json:"startDate"` // YYYY-MM-DD
	EndDate   string  `json:"endDate"`   // YYYY-MM-DD
	Content   *string `json:"content,omitempty"`
}

type CreateAttendanceRequest struct {
	UserID    string  `json:"userId"`
	TypeID    string  `json:"typeId"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Content   *string `json:"content,omitempty"` // nil이면 필드 자체를 보내지 않는다
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}
