package config

import "os"

type Config struct {
	Port                    string
	Env                     string
	MongoURI                string
	MongoDBName             string
	JWTSecret               string
	UploadDir               string
	FirebaseCredentialsPath string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDBName:             getEnv("MONGO_DB_NAME", "library"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		UploadDir:               getEnv("UPLOAD_DIR", "public/uploads"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
