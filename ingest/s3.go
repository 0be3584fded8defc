package ingest

import (
	"fmt"
	"io/ioutil"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/grailbio/base/log"
)

// OpenPath opens path as a BAM Source. Paths beginning with s3:// are
// downloaded to a local scratch file first (biogo/hts requires a seekable
// io.ReaderAt, which an S3 object body is not); all other paths are opened
// directly from the local filesystem.
func OpenPath(path string) (*Source, error) {
	if !strings.HasPrefix(path, "s3://") {
		return Open(path)
	}
	local, err := downloadS3(path)
	if err != nil {
		return nil, err
	}
	return Open(local)
}

func downloadS3(path string) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("ingest: parsing %s: %w", path, err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	sess, err := session.NewSession()
	if err != nil {
		return "", fmt.Errorf("ingest: creating AWS session: %w", err)
	}

	f, err := ioutil.TempFile("", "umiconsensus-s3-*.bam")
	if err != nil {
		return "", fmt.Errorf("ingest: creating scratch file for %s: %w", path, err)
	}
	defer f.Close()

	log.Debug.Printf("downloading %s to %s", path, f.Name())
	downloader := s3manager.NewDownloader(sess)
	if _, err := downloader.Download(f, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("ingest: downloading %s: %w", path, err)
	}
	return f.Name(), nil
}
