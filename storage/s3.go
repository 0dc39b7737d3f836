package storage

import (
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/nsfs/config"
	"github.com/nicolagi/nsfs/path"
)

// S3Mirror is an optional, best-effort backup of a FileStore's content to
// an S3 bucket, grounded on the teacher's s3Store. It is not consulted for
// reads: local disk is always the source of truth for Storage.Read/Size;
// S3 only ever receives a copy of what FileStore already wrote locally.
type S3Mirror struct {
	profile string
	region  string
	bucket  string
	client  *s3.S3
}

// NewS3Mirror builds a mirror from config. The client connects lazily on
// first push.
func NewS3Mirror(c *config.C) *S3Mirror {
	return &S3Mirror{profile: c.S3Profile, region: c.S3Region, bucket: c.S3Bucket}
}

// push uploads the file at localPath under key p.String(), in its own
// goroutine, logging (not returning) any failure: a mirror push never
// blocks or fails the local Write/Copy it accompanies.
func (m *S3Mirror) push(p path.Path, localPath string) {
	go func() {
		if err := m.ensureClient(); err != nil {
			log.WithFields(log.Fields{"op": "s3mirror.push", "path": p}).WithError(err).Warning("could not connect to s3")
			return
		}
		f, err := os.Open(localPath)
		if err != nil {
			log.WithFields(log.Fields{"op": "s3mirror.push", "path": p}).WithError(err).Warning("could not open local file for mirroring")
			return
		}
		defer func() { _ = f.Close() }()
		_, err = m.client.PutObject(&s3.PutObjectInput{
			Bucket: aws.String(m.bucket),
			Key:    aws.String(p.String()),
			Body:   f,
		})
		if err != nil {
			log.WithFields(log.Fields{"op": "s3mirror.push", "path": p}).WithError(err).Warning("could not mirror to s3")
		}
	}()
}

func (m *S3Mirror) ensureClient() error {
	if m.client != nil {
		return nil
	}
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(m.region),
		Credentials: credentials.NewSharedCredentials("", m.profile),
	})
	if err != nil {
		return err
	}
	m.client = s3.New(sess)
	return nil
}
