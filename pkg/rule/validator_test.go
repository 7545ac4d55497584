package rule_test

import (
	"testing"

	"github.com/soumik183/instavault/pkg/rule"
)

// connParams 用于测试 ValidateStruct 的账号连接参数结构体.
type connParams struct {
	Endpoint  string `rule:"required,url"`
	SecretKey string `rule:"required"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	engine := rule.Engine()
	if engine == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效连接参数的验证.
func TestValidateStruct(t *testing.T) {
	// 有效参数
	valid := connParams{Endpoint: "https://abc.supabase.co", SecretKey: "anon-key"}

	err := rule.ValidateStruct(valid)
	if err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 无效参数：缺少 SecretKey
	invalid1 := connParams{Endpoint: "https://abc.supabase.co"}

	err = rule.ValidateStruct(invalid1)
	if err == nil {
		t.Error("Expected error for invalid struct (missing secret key), got nil")
	}

	// 无效参数：Endpoint 不是 URL
	invalid2 := connParams{Endpoint: "not a url", SecretKey: "anon-key"}

	err = rule.ValidateStruct(invalid2)
	if err == nil {
		t.Error("Expected error for invalid struct (malformed endpoint), got nil")
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	// 有效 url
	err := rule.ValidateVar("https://example.com", "required,url")
	if err != nil {
		t.Errorf("Expected no error for valid url, got %v", err)
	}

	// 无效 url
	err = rule.ValidateVar("::::", "required,url")
	if err == nil {
		t.Error("Expected error for invalid url, got nil")
	}

	// oneof 校验连接速度档位
	err = rule.ValidateVar("fast", "oneof=fast medium slow")
	if err != nil {
		t.Errorf("Expected no error for valid speed tier, got %v", err)
	}

	err = rule.ValidateVar("turbo", "oneof=fast medium slow")
	if err == nil {
		t.Error("Expected error for invalid speed tier, got nil")
	}
}
