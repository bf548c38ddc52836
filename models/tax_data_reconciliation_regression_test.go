package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/models"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
)

// Regression: the ingestion pipeline must duplicate rows in create mode
// and reconcile on (classification, name) in update mode, preserving
// stored fields the incoming row did not supply.
func TestImportTaxData_CreateAndUpdateModes(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "taxadmin_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	db := config.GetDB()

	admin := models.User{
		Username: "import-admin",
		Name:     "Import Admin",
		Password: "x",
		IsStaff:  utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	authz := &models.AuthContext{
		UserID:   admin.ID,
		Username: admin.Username,
		Role:     models.RoleAdmin,
		IsStaff:  true,
	}

	classification, err := models.CreateClassification(ctx, authz, &models.NewClassification{Name: "Dividendos"})
	if err != nil {
		t.Fatalf("create classification: %v", err)
	}

	firstUpload := "Nombre,Monto,Factor,Fecha\n" +
		"Dato A,100.50,1.05,2024-01-15\n" +
		"Dato B,200.00,1.10,2024-02-01\n"

	summary, err := models.ImportTaxData(ctx, authz, classification.ID,
		"datos.csv", strings.NewReader(firstUpload), int64(len(firstUpload)), models.ImportModeCreate)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if summary.Created != 2 || summary.Updated != 0 {
		t.Fatalf("first import summary = %+v, want {Created:2 Updated:0}", summary)
	}

	// update mode: amount changes for A, B gets a row without amount,
	// C is new and must be inserted
	secondUpload := "Nombre,Monto,Fecha\n" +
		"Dato A,999.99,2024-03-01\n" +
		"Dato B,,2024-03-02\n" +
		"Dato C,300.00,2024-03-03\n"

	summary, err = models.ImportTaxData(ctx, authz, classification.ID,
		"datos.csv", strings.NewReader(secondUpload), int64(len(secondUpload)), models.ImportModeUpdate)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if summary.Created != 1 || summary.Updated != 2 {
		t.Fatalf("second import summary = %+v, want {Created:1 Updated:2}", summary)
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.TaxData{}).
		Where("classification_id = ?", classification.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("got %d records, want 3", count)
	}

	var recordA models.TaxData
	if err := db.WithContext(ctx).
		Where("classification_id = ? AND name = ?", classification.ID, "Dato A").
		Take(&recordA).Error; err != nil {
		t.Fatal(err)
	}
	if recordA.Amount == nil || recordA.Amount.String() != "999.99" {
		t.Errorf("Dato A amount = %v, want 999.99", recordA.Amount)
	}
	if recordA.Factor == nil || recordA.Factor.String() != "1.05" {
		t.Errorf("Dato A factor = %v, want 1.05 preserved from the first upload", recordA.Factor)
	}

	var recordB models.TaxData
	if err := db.WithContext(ctx).
		Where("classification_id = ? AND name = ?", classification.ID, "Dato B").
		Take(&recordB).Error; err != nil {
		t.Fatal(err)
	}
	if recordB.Amount == nil || recordB.Amount.String() != "200" {
		t.Errorf("Dato B amount = %v, want 200 preserved", recordB.Amount)
	}

	// create mode never reconciles: re-importing the first file doubles up
	summary, err = models.ImportTaxData(ctx, authz, classification.ID,
		"datos.csv", strings.NewReader(firstUpload), int64(len(firstUpload)), models.ImportModeCreate)
	if err != nil {
		t.Fatalf("third import: %v", err)
	}
	if summary.Created != 2 {
		t.Fatalf("third import summary = %+v, want Created:2", summary)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("taxadmin-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("taxadmin-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=taxadmin_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
