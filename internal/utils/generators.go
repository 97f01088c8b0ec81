package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GeneratePassID() string {
	return fmt.Sprintf("pass_%d_%s", time.Now().Unix(), shortUUID())
}

func GeneratePaymentID() string {
	return fmt.Sprintf("pay_%d_%s", time.Now().Unix(), shortUUID())
}

func GenerateAuditID() string {
	return fmt.Sprintf("audit_%d_%s", time.Now().Unix(), shortUUID())
}

func GenerateUserID() string {
	return uuid.New().String()
}

func shortUUID() string {
	return strings.Split(uuid.New().String(), "-")[0]
}
