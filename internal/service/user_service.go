package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/model"
	"github.com/Oskru/study-smart/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserSelfDelete = errors.New("不能删除自己")
)

// UserService 用户业务接口
type UserService interface {
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	CreatePlanner(ctx context.Context, req *dto.CreatePlannerRequest) (*dto.CreateUserResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportStudentRow, error)
	ImportStudents(ctx context.Context, rows []ImportStudentRow) (*dto.ImportUserResponse, error)
}

// ImportStudentRow Excel 导入解析后的单行数据
type ImportStudentRow struct {
	Row         int
	Name        string
	Email       string
	IndexNumber string
	Major       string
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── List / GetByID ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.Role, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}

	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── CreatePlanner ──────────────────────

func (s *userService) CreatePlanner(ctx context.Context, req *dto.CreatePlannerRequest) (*dto.CreateUserResponse, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tempPassword, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RolePlanner,
		Confirmed:    true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建排课员失败", zap.Error(err))
		return nil, err
	}

	return &dto.CreateUserResponse{
		User:         toUserResponse(user),
		TempPassword: tempPassword,
	}, nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportBadFile     = errors.New("无法解析Excel文件")
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（姓名/邮箱/学号）")
)

// ParseImportFile 解析学生名单 Excel，列序由表头决定
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportStudentRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取工作表失败: %v", ErrImportBadFile, err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["name"] < 0 || colIndex["email"] < 0 || colIndex["index_number"] < 0 {
		return nil, ErrImportBadHeader
	}

	cell := func(row []string, key string) string {
		idx := colIndex[key]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []ImportStudentRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportStudentRow{
			Row:         i + 1,
			Name:        cell(row, "name"),
			Email:       cell(row, "email"),
			IndexNumber: cell(row, "index_number"),
			Major:       cell(row, "major"),
		}

		// 跳过全空行
		if item.Name == "" && item.Email == "" && item.IndexNumber == "" && item.Major == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"name":         -1,
		"email":        -1,
		"index_number": -1,
		"major":        -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch lower {
		case "姓名", "name":
			idx["name"] = i
		case "邮箱", "email":
			idx["email"] = i
		case "学号", "index_number", "index":
			idx["index_number"] = i
		case "专业", "major":
			idx["major"] = i
		}
	}
	return idx
}

// ────────────────────── ImportStudents ──────────────────────

func (s *userService) ImportStudents(ctx context.Context, rows []ImportStudentRow) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows), Created: []dto.ImportedStudent{}}

	// 第一阶段：数据预校验（不接触数据库写操作）
	type validatedRow struct {
		row      ImportStudentRow
		email    string
		password string
		hash     []byte
	}
	var validRows []validatedRow
	seen := make(map[string]bool, len(rows))

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	for _, row := range rows {
		if row.Name == "" || row.Email == "" || row.IndexNumber == "" {
			fail(row.Row, "必填字段为空")
			continue
		}

		email := normalizeEmail(row.Email)
		if seen[email] {
			fail(row.Row, fmt.Sprintf("文件内邮箱重复: %s", email))
			continue
		}
		if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
			fail(row.Row, fmt.Sprintf("邮箱已存在: %s", email))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		seen[email] = true

		password, err := generateTempPassword(8)
		if err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			fail(row.Row, "密码哈希失败")
			continue
		}

		validRows = append(validRows, validatedRow{row: row, email: email, password: password, hash: hash})
	}

	if len(validRows) == 0 {
		return resp, nil
	}

	// 第二阶段：在事务中批量创建所有通过校验的学生
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)
	for _, vr := range validRows {
		user := &model.User{
			Name:         vr.row.Name,
			Email:        vr.email,
			PasswordHash: string(vr.hash),
			Role:         model.RoleStudent,
			IndexNumber:  vr.row.IndexNumber,
			Major:        vr.row.Major,
			Confirmed:    true,
		}
		if err := txRepo.User.Create(ctx, user); err != nil {
			tx.Rollback()
			s.logger.Error("导入学生写入失败，事务回滚",
				zap.Int("row", vr.row.Row), zap.Error(err))
			return nil, fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", vr.row.Row, err)
		}
		resp.Success++
		resp.Created = append(resp.Created, dto.ImportedStudent{
			Row:          vr.row.Row,
			Email:        vr.email,
			TempPassword: vr.password,
		})
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生导入完成", zap.Int("success", resp.Success), zap.Int("failed", resp.Failed))
	return resp, nil
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 8 {
		length = 8
	}

	pick := func(set string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return 0, err
		}
		return set[n.Int64()], nil
	}

	result := make([]byte, length)
	var err error
	if result[0], err = pick(letters); err != nil {
		return "", err
	}
	if result[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if result[i], err = pick(all); err != nil {
			return "", err
		}
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}
	return string(result), nil
}
