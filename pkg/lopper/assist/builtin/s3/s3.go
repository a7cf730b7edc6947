// Package s3 implements the "s3" builtin assist: it uploads a
// rendered tree export to an S3 bucket/key named by the node's
// "s3-bucket"/"s3-key" properties. It is invoked through an
// `assist-v1` lop; the `output` lop does not dispatch to it.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

const compatible = "system-device-tree-v1,lop,assist-v1,s3"

// Assist uploads a tree's exported JSON form to S3.
type Assist struct {
	svc *s3.S3
}

// New builds an s3 assist from the ambient AWS session/credential
// chain (shared config, environment, instance profile), the standard
// discovery order aws-sdk-go's session.NewSession uses.
func New() (*Assist, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 assist: %w", err)
	}
	return &Assist{svc: s3.New(sess)}, nil
}

// ID implements assist.Assist.
func (a *Assist) ID() string { return "s3" }

// IsCompatible implements assist.Assist.
func (a *Assist) IsCompatible(node *lopper.Node) bool {
	p, ok := node.Property("compatible")
	if !ok {
		return false
	}
	return p.Value.Equal(compatible)
}

// Run exports the main tree rooted at node's owning tree and uploads
// it as JSON to the bucket/key named by the node's properties.
func (a *Assist) Run(ctx context.Context, tree *lopper.Tree, node *lopper.Node, args []string) error {
	bucketProp, ok := node.Property("s3-bucket")
	if !ok {
		return fmt.Errorf("s3 assist: node %s has no s3-bucket property", node.AbsPath())
	}
	keyProp, ok := node.Property("s3-key")
	if !ok {
		return fmt.Errorf("s3 assist: node %s has no s3-key property", node.AbsPath())
	}
	bucket, _ := bucketProp.Value.AsString()
	key, _ := keyProp.Value.AsString()

	payload, err := json.MarshalIndent(tree.Export(), "", "  ")
	if err != nil {
		return fmt.Errorf("s3 assist: marshal tree: %w", err)
	}

	_, err = a.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(payload),
	})
	if err != nil {
		return fmt.Errorf("s3 assist: put %s/%s: %w", bucket, key, err)
	}
	return nil
}
